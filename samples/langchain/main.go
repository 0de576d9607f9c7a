// Copyright (c) Microsoft. All rights reserved.

// Command langchain asks the gateway one question through langchaingo.
// The bearer token is fetched once at startup.
//
//	export ENDPOINT_URL=https://<apim>.azure-api.net
//	export TOKEN_AUDIENCE=https://cognitiveservices.azure.com
//	go run .
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/microsoft/apim-openai/go/apim"
	"github.com/microsoft/apim-openai/go/langchain"
)

func main() {
	ctx := context.Background()

	cfg, err := apim.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	var tokens apim.TokenSource
	if mode, _ := cfg.AuthMode(); mode == apim.AuthModeToken {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			log.Fatalf("Failed to create Azure credential: %v", err)
		}
		tokens = apim.CredentialTokenFunc(cred, cfg.Audience)
	}

	auth, err := apim.NewAuthenticator(cfg, tokens)
	if err != nil {
		log.Fatal(err)
	}
	client, err := langchain.New(ctx, cfg, auth)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	answer, err := apim.Ask(ctx, client,
		"You are a helpful assistant.",
		"Does Azure OpenAI support customer managed keys?",
		nil,
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(answer)
}
