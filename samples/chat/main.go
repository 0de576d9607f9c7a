// Copyright (c) Microsoft. All rights reserved.

// Command chat asks questions of a model behind an Azure API Management
// gateway. Each line is sent as its own request; no history is kept.
//
// The auth mode follows the configuration: a subscription key selects key
// mode, a token audience selects Entra ID tokens from DefaultAzureCredential.
//
//	export ENDPOINT_URL=https://<apim>.azure-api.net
//	export SUBSCRIPTION_KEY=<key>              # or TOKEN_AUDIENCE=https://cognitiveservices.azure.com
//	export CHAT_BACKEND=openai-go              # direct (default), openai-go, go-openai, langchain
//	export CONFIG_FILE=apim.yaml               # optional, environment values win
//	go run .
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/microsoft/apim-openai/go/apim"
	"github.com/microsoft/apim-openai/go/goopenai"
	"github.com/microsoft/apim-openai/go/langchain"
	"github.com/microsoft/apim-openai/go/openai"
	"github.com/microsoft/apim-openai/go/openaisdk"
)

func main() {
	// Enable debug logging if requested
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := loadConfig()
	ctx := context.Background()

	client, err := newChatClient(ctx, cfg, os.Getenv("CHAT_BACKEND"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Chat with the assistant (type 'quit' to exit)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		resp, err := client.Response(ctx, []apim.Message{
			apim.NewSystemMessage("You are a helpful assistant."),
			apim.NewUserMessage(input),
		}, nil)
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}

		fmt.Printf("Assistant: %s\n", resp.Text())
		if resp.Usage.TotalTokens > 0 {
			fmt.Printf("  [tokens: %d in, %d out]\n",
				resp.Usage.InputTokens, resp.Usage.OutputTokens)
		}
		fmt.Println()
	}
}

func loadConfig() apim.Config {
	cfg, err := apim.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		base, err := apim.LoadConfigFile(path)
		if err != nil {
			log.Fatal(err)
		}
		cfg = base.Merge(cfg)
	}
	return cfg
}

// newChatClient builds the client for the named backend. Token mode uses
// DefaultAzureCredential behind a refreshing cache.
func newChatClient(ctx context.Context, cfg apim.Config, backend string) (apim.ChatClient, error) {
	mode, err := cfg.AuthMode()
	if err != nil {
		return nil, err
	}

	var tokens apim.TokenSource
	if mode == apim.AuthModeToken {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create Azure credential: %w", err)
		}
		tokens = apim.NewTokenCache(apim.CredentialTokenFunc(cred, cfg.Audience))
	}

	auth, err := apim.NewAuthenticator(cfg, tokens)
	if err != nil {
		return nil, err
	}
	logging := apim.LoggingMiddleware(slog.Default())

	fmt.Printf("Using %s authentication via %s\n", mode, cfg.Endpoint)

	switch backend {
	case "", "direct":
		return openai.New(cfg, auth, openai.WithChatMiddleware(logging))
	case "openai-go":
		return openaisdk.New(cfg, auth, openaisdk.WithChatMiddleware(logging))
	case "go-openai":
		return goopenai.New(cfg, auth, goopenai.WithChatMiddleware(logging))
	case "langchain":
		return langchain.New(ctx, cfg, auth, langchain.WithChatMiddleware(logging))
	default:
		return nil, fmt.Errorf("%w: unknown CHAT_BACKEND %q", apim.ErrConfig, backend)
	}
}
