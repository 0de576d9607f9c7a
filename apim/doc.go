// Copyright (c) Microsoft. All rights reserved.

// Package apim provides the core types for calling a chat-completion
// endpoint that sits behind an Azure API Management gateway.
//
// # Quick Start
//
// Build a [Config], pick how credentials are obtained, and hand both to a
// backend package such as openai:
//
//	cfg, err := apim.LoadConfig()
//	cred, err := azidentity.NewDefaultAzureCredential(nil)
//	tokens := apim.NewTokenCache(apim.CredentialTokenFunc(cred, cfg.Audience))
//	auth, err := apim.NewAuthenticator(cfg, tokens)
//
//	client, err := openai.New(cfg, auth)
//	answer, err := apim.Ask(ctx, client, "You are a helpful assistant.", "Hello!", nil)
//
// # Authentication
//
// Exactly one mode is active per [Config]:
//
//   - Key mode sends the subscription key in a static header
//     (api-key by default).
//   - Token mode sends "Authorization: Bearer <token>" where the token is
//     issued for the configured audience. [TokenCache] refreshes it only
//     when it is absent or expired.
//
// # Errors
//
// Every error matches [ErrClient] and one of [ErrConfig], [ErrAuth],
// [ErrRequest] or [ErrProvider]. Non-2xx responses are [*StatusError]
// values carrying the status code and body.
package apim
