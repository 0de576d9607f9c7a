// Copyright (c) Microsoft. All rights reserved.

// Package goopenai provides an [apim.ChatClient] built on
// github.com/sashabaranov/go-openai in Azure mode.
//
// The library's own Azure key handling is bypassed: an [http.Client]
// wrapper attaches the header from an [apim.CredentialSource] to every
// request, so bearer tokens are refreshed by the caller's token cache.
//
// go-openai omits a zero temperature from the request body, so an explicit
// ChatOptions.Temperature of 0 is not sent and the service default applies.
// Use the openai or openaisdk packages when a temperature of exactly 0 matters.
package goopenai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/microsoft/apim-openai/go/apim"
)

// Client implements [apim.ChatClient] using go-openai.
type Client struct {
	lib     *openai.Client
	cfg     apim.Config
	handler apim.ChatHandler
}

var _ apim.ChatClient = (*Client)(nil)

// New validates cfg and creates a [Client].
func New(cfg apim.Config, creds apim.CredentialSource, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, fmt.Errorf("%w: credential source is required", apim.ErrConfig)
	}
	o := &clientConfig{}
	for _, opt := range opts {
		opt(o)
	}
	cfg = cfg.WithDefaults()

	base := o.httpClient
	if base == nil {
		base = http.DefaultClient
	}

	conf := openai.DefaultAzureConfig("", cfg.Endpoint)
	conf.APIVersion = cfg.APIVersion
	// Deployments are named explicitly; keep model names verbatim instead
	// of the library's default dot-stripping.
	conf.AzureModelMapperFunc = func(model string) string { return model }
	conf.HTTPClient = &authDoer{creds: creds, next: base}

	c := &Client{
		lib: openai.NewClientWithConfig(conf),
		cfg: cfg,
	}
	c.handler = apim.ChainChatMiddleware(c.coreResponse, o.chatMiddleware...)
	return c, nil
}

// authDoer replaces whatever auth header go-openai set with the one from creds.
type authDoer struct {
	creds apim.CredentialSource
	next  *http.Client
}

func (d *authDoer) Do(req *http.Request) (*http.Response, error) {
	h, err := d.creds.AuthHeader(req.Context())
	if err != nil {
		return nil, err
	}
	req.Header.Del("api-key")
	req.Header.Del(apim.AuthorizationHeader)
	h.Apply(req)
	return d.next.Do(req)
}

// Response sends one chat completion request and returns the response.
func (c *Client) Response(ctx context.Context, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

func (c *Client) coreResponse(ctx context.Context, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:    opts.ModelOr(c.cfg.Deployment),
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	if opts != nil {
		if opts.Temperature != nil {
			// omitempty: 0 is dropped on the wire.
			req.Temperature = float32(*opts.Temperature)
		}
		if opts.MaxTokens != nil {
			req.MaxTokens = *opts.MaxTokens
		}
	}

	out, err := c.lib.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", apim.ErrInvalidResponse)
	}

	resp := &apim.ChatResponse{
		ID:    out.ID,
		Model: out.Model,
		Usage: apim.UsageDetails{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
			TotalTokens:  out.Usage.TotalTokens,
		},
		Raw: out,
	}
	for _, ch := range out.Choices {
		role := apim.Role(ch.Message.Role)
		if role == "" {
			role = apim.RoleAssistant
		}
		resp.Choices = append(resp.Choices, apim.Choice{
			Index:        ch.Index,
			Message:      apim.Message{Role: role, Content: ch.Message.Content},
			FinishReason: apim.FinishReason(ch.FinishReason),
		})
	}
	return resp, nil
}

// classify maps go-openai errors onto the apim error kinds.
func classify(err error) error {
	if errors.Is(err, apim.ErrClient) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		return apim.NewStatusError(apiErr.HTTPStatusCode, code, apiErr.Message, "")
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		var gw struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(reqErr.Body, &gw)
		return apim.NewStatusError(reqErr.HTTPStatusCode, "", gw.Message, string(reqErr.Body))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: parse response: %v", apim.ErrInvalidResponse, err)
	}
	return apim.RequestError("chat completion", err)
}
