// Copyright (c) Microsoft. All rights reserved.

// Package openai provides a direct [apim.ChatClient] implementation that
// talks to the Azure OpenAI chat completions endpoint behind an API
// Management gateway with nothing but net/http.
//
// Create a client from a validated configuration and a credential source:
//
//	auth, err := apim.NewAuthenticator(cfg, nil) // key mode
//	client, err := openai.New(cfg, auth)
//
//	resp, err := client.Response(ctx, []apim.Message{
//	    apim.NewSystemMessage("You are a helpful assistant."),
//	    apim.NewUserMessage("Does Azure OpenAI support customer managed keys?"),
//	}, nil)
//
// Requests are sent to
//
//	{endpoint}/openai/deployments/{model}/chat/completions?api-version={version}
//
// so the configured endpoint must not include the /openai suffix.
//
// # Configuration
//
// Use functional options to configure the client:
//
//   - [WithHTTPClient]: provide a custom http.Client
//   - [WithHeaders]: add custom headers to every request
//   - [WithChatMiddleware]: wrap the request pipeline
//
// # Testing
//
// The client uses an unexported transport interface internally.
// For testing, provide a mock http.Client via [WithHTTPClient]
// with a custom RoundTripper.
package openai
