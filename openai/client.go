// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/microsoft/apim-openai/go/apim"
)

// Client implements [apim.ChatClient] against the chat completions
// endpoint of an API Management gateway. Use [New] to create one.
type Client struct {
	tp      transport
	cfg     apim.Config
	creds   apim.CredentialSource
	handler apim.ChatHandler
}

// Verify interface compliance at compile time.
var _ apim.ChatClient = (*Client)(nil)

// New validates cfg and creates a [Client] that authenticates every
// request with the header produced by creds.
//
//	auth, _ := apim.NewAuthenticator(cfg, tokens)
//	client, err := openai.New(cfg, auth, openai.WithHTTPClient(hc))
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
	c := &Client{
		tp:    newHTTPTransport(o),
		cfg:   cfg.WithDefaults(),
		creds: creds,
	}
	c.handler = apim.ChainChatMiddleware(c.coreResponse, o.chatMiddleware...)
	return c, nil
}

// Response sends one chat completion request and returns the response.
func (c *Client) Response(ctx context.Context, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

// coreResponse is the base implementation called by the middleware chain.
func (c *Client) coreResponse(ctx context.Context, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	auth, err := c.creds.AuthHeader(ctx)
	if err != nil {
		return nil, err
	}
	return send(ctx, c.tp, c.cfg, auth, messages, opts)
}

// SendChatRequest issues a single chat completion request with auth
// attached. The endpoint is validated before any network activity, so a
// missing endpoint fails with [apim.ErrConfig] without touching httpClient.
// A nil httpClient uses http.DefaultClient.
func SendChatRequest(ctx context.Context, httpClient *http.Client, cfg apim.Config, auth apim.AuthHeader, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	if err := cfg.ValidateEndpoint(); err != nil {
		return nil, err
	}
	if auth.Name == "" {
		return nil, fmt.Errorf("%w: auth header is required", apim.ErrConfig)
	}
	tp := newHTTPTransport(&clientConfig{httpClient: httpClient})
	return send(ctx, tp, cfg.WithDefaults(), auth, messages, opts)
}

func send(ctx context.Context, tp transport, cfg apim.Config, auth apim.AuthHeader, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	model := opts.ModelOr(cfg.Deployment)
	req := buildRequest(messages, opts, model)

	resp, err := tp.do(ctx, cfg.ChatCompletionsURL(model), auth, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apim.RequestError("read response body", err)
	}

	raw, err := unmarshalChatResponse(body)
	if err != nil {
		return nil, err
	}
	return parseChatResponse(raw), nil
}
