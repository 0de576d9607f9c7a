// Copyright (c) Microsoft. All rights reserved.

package goopenai

import (
	"net/http"

	"github.com/microsoft/apim-openai/go/apim"
)

type clientConfig struct {
	httpClient     *http.Client
	chatMiddleware []apim.ChatMiddleware
}

// Option configures a [Client].
type Option func(*clientConfig)

// WithHTTPClient provides the http.Client that ultimately sends requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithChatMiddleware adds middleware to the chat pipeline.
// Middleware is applied in the order provided (first = outermost).
func WithChatMiddleware(mw ...apim.ChatMiddleware) Option {
	return func(c *clientConfig) { c.chatMiddleware = append(c.chatMiddleware, mw...) }
}
