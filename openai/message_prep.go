// Copyright (c) Microsoft. All rights reserved.

package openai

import "github.com/microsoft/apim-openai/go/apim"

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildRequest converts apim types into a chat completions request.
func buildRequest(messages []apim.Message, opts *apim.ChatOptions, model string) *chatRequest {
	req := &chatRequest{
		Model:    model,
		Messages: make([]chatMessage, 0, len(messages)),
	}
	if opts != nil {
		req.Temperature = opts.Temperature
		req.MaxTokens = opts.MaxTokens
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return req
}
