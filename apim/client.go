// Copyright (c) Microsoft. All rights reserved.

package apim

import "context"

// ChatClient sends one chat request and returns the provider's response.
// Backend packages (openai, openaisdk, goopenai, langchain) implement it.
type ChatClient interface {
	Response(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)
}

// Ask sends a system prompt and a user prompt and returns the first
// choice's content.
func Ask(ctx context.Context, client ChatClient, system, user string, opts *ChatOptions) (string, error) {
	msgs := PrependInstructions([]Message{NewUserMessage(user)}, system)
	resp, err := client.Response(ctx, msgs, opts)
	if err != nil {
		return "", err
	}
	c, err := resp.FirstChoice()
	if err != nil {
		return "", err
	}
	return c.Message.Content, nil
}
