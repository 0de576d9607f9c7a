// Copyright (c) Microsoft. All rights reserved.

package openaisdk

import (
	"net/http"

	"github.com/openai/openai-go/option"

	"github.com/microsoft/apim-openai/go/apim"
)

type clientConfig struct {
	httpClient     *http.Client
	requestOptions []option.RequestOption
	chatMiddleware []apim.ChatMiddleware
}

// Option configures a [Client].
type Option func(*clientConfig)

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithRequestOptions passes extra openai-go request options through to
// the SDK client, e.g. option.WithHeader.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *clientConfig) { c.requestOptions = append(c.requestOptions, opts...) }
}

// WithChatMiddleware adds middleware to the chat pipeline.
// Middleware is applied in the order provided (first = outermost).
func WithChatMiddleware(mw ...apim.ChatMiddleware) Option {
	return func(c *clientConfig) { c.chatMiddleware = append(c.chatMiddleware, mw...) }
}
