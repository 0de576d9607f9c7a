// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"net/http"

	"github.com/microsoft/apim-openai/go/apim"
)

// clientConfig holds resolved configuration for the client.
type clientConfig struct {
	httpClient     *http.Client
	headers        map[string]string
	chatMiddleware []apim.ChatMiddleware
}

// Option configures a [Client].
type Option func(*clientConfig)

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithHeaders adds custom headers to every request. The auth header is
// applied last and cannot be overridden here.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) { c.headers = headers }
}

// WithChatMiddleware adds middleware to the chat pipeline.
// Middleware is applied in the order provided (first = outermost).
func WithChatMiddleware(mw ...apim.ChatMiddleware) Option {
	return func(c *clientConfig) { c.chatMiddleware = append(c.chatMiddleware, mw...) }
}
