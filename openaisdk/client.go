// Copyright (c) Microsoft. All rights reserved.

// Package openaisdk provides an [apim.ChatClient] built on the official
// openai-go SDK, pointed at an API Management gateway with the SDK's azure
// endpoint helper.
//
//	client, err := openaisdk.New(cfg, auth)
//	resp, err := client.Response(ctx, msgs, nil)
//
// The SDK's own retry loop is disabled; every call is one request.
package openaisdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/microsoft/apim-openai/go/apim"
)

// Client implements [apim.ChatClient] using openai-go.
type Client struct {
	sdk     openai.Client
	cfg     apim.Config
	handler apim.ChatHandler
}

var _ apim.ChatClient = (*Client)(nil)

// New validates cfg and creates a [Client]. Every request is authenticated
// with the header produced by creds, injected through an SDK middleware.
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

	reqOpts := []option.RequestOption{
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		option.WithMaxRetries(0),
		option.WithMiddleware(authMiddleware(creds)),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	reqOpts = append(reqOpts, o.requestOptions...)

	c := &Client{
		sdk: openai.NewClient(reqOpts...),
		cfg: cfg,
	}
	c.handler = apim.ChainChatMiddleware(c.coreResponse, o.chatMiddleware...)
	return c, nil
}

// authMiddleware attaches the credential for each outgoing request. Any
// bearer header the SDK derived from OPENAI_API_KEY is dropped first so it
// never reaches the gateway.
func authMiddleware(creds apim.CredentialSource) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		h, err := creds.AuthHeader(req.Context())
		if err != nil {
			return nil, err
		}
		req.Header.Del(apim.AuthorizationHeader)
		h.Apply(req)
		return next(req)
	}
}

// Response sends one chat completion request and returns the response.
func (c *Client) Response(ctx context.Context, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

func (c *Client) coreResponse(ctx context.Context, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(opts.ModelOr(c.cfg.Deployment)),
		Messages: toParams(messages),
	}
	if opts != nil {
		if opts.Temperature != nil {
			params.Temperature = openai.Float(*opts.Temperature)
		}
		if opts.MaxTokens != nil {
			params.MaxTokens = openai.Int(int64(*opts.MaxTokens))
		}
	}

	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classify(err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", apim.ErrInvalidResponse)
	}
	return fromCompletion(completion), nil
}

func toParams(messages []apim.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case apim.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case apim.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func fromCompletion(cc *openai.ChatCompletion) *apim.ChatResponse {
	resp := &apim.ChatResponse{
		ID:    cc.ID,
		Model: cc.Model,
		Usage: apim.UsageDetails{
			InputTokens:  int(cc.Usage.PromptTokens),
			OutputTokens: int(cc.Usage.CompletionTokens),
			TotalTokens:  int(cc.Usage.TotalTokens),
		},
		Raw: cc,
	}
	for _, ch := range cc.Choices {
		resp.Choices = append(resp.Choices, apim.Choice{
			Index:        int(ch.Index),
			Message:      apim.NewAssistantMessage(ch.Message.Content),
			FinishReason: apim.FinishReason(ch.FinishReason),
		})
	}
	return resp
}

// classify maps SDK errors onto the apim error kinds.
func classify(err error) error {
	if errors.Is(err, apim.ErrClient) {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apim.NewStatusError(apiErr.StatusCode, apiErr.Code, apiErr.Message, apiErr.RawJSON())
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: parse response: %v", apim.ErrInvalidResponse, err)
	}
	return apim.RequestError("chat completion", err)
}
