// Copyright (c) Microsoft. All rights reserved.

// Command key sends one chat completion through the gateway using an APIM
// subscription key.
//
//	export ENDPOINT_URL=https://<apim>.azure-api.net
//	export SUBSCRIPTION_KEY=<key>
//	go run .
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/microsoft/apim-openai/go/apim"
	"github.com/microsoft/apim-openai/go/openaisdk"
)

func main() {
	cfg, err := apim.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Mode = apim.AuthModeKey

	auth, err := apim.NewAuthenticator(cfg, nil)
	if err != nil {
		log.Fatal(err)
	}
	client, err := openaisdk.New(cfg, auth)
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
