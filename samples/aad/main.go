// Copyright (c) Microsoft. All rights reserved.

// Command aad sends one chat completion through the gateway using a
// Microsoft Entra ID bearer token.
//
//	export ENDPOINT_URL=https://<apim>.azure-api.net
//	export TOKEN_AUDIENCE=https://cognitiveservices.azure.com
//	go run .
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/microsoft/apim-openai/go/apim"
	"github.com/microsoft/apim-openai/go/openaisdk"
)

func main() {
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := apim.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Mode = apim.AuthModeToken

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		log.Fatalf("Failed to create Azure credential: %v", err)
	}
	tokens := apim.NewTokenCache(apim.CredentialTokenFunc(cred, cfg.Audience))

	auth, err := apim.NewAuthenticator(cfg, tokens)
	if err != nil {
		log.Fatal(err)
	}
	client, err := openaisdk.New(cfg, auth,
		openaisdk.WithChatMiddleware(apim.LoggingMiddleware(slog.Default())),
	)
	if err != nil {
		log.Fatal(err)
	}

	answer, err := apim.Ask(context.Background(), client,
		"You are a helpful assistant.",
		"Does Azure OpenAI support customer managed keys?",
		&apim.ChatOptions{ModelID: apim.DefaultDeployment},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(answer)
}
