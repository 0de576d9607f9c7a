// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"
	"fmt"

	"github.com/microsoft/apim-openai/go/apim"
)

// chatCompletionResponse is the chat completions response body.
type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   *usage   `json:"usage,omitempty"`
}

type choice struct {
	Index        int         `json:"index"`
	Message      respMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type respMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// unmarshalChatResponse parses the JSON response body.
func unmarshalChatResponse(data []byte) (*chatCompletionResponse, error) {
	var resp chatCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", apim.ErrInvalidResponse, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", apim.ErrInvalidResponse)
	}
	return &resp, nil
}

// parseChatResponse converts the wire response into apim types.
func parseChatResponse(raw *chatCompletionResponse) *apim.ChatResponse {
	resp := &apim.ChatResponse{
		ID:    raw.ID,
		Model: raw.Model,
		Raw:   raw,
	}

	if raw.Usage != nil {
		resp.Usage = apim.UsageDetails{
			InputTokens:  raw.Usage.PromptTokens,
			OutputTokens: raw.Usage.CompletionTokens,
			TotalTokens:  raw.Usage.TotalTokens,
		}
	}

	for _, c := range raw.Choices {
		role := apim.Role(c.Message.Role)
		if role == "" {
			role = apim.RoleAssistant
		}
		msg := apim.Message{Role: role}
		if c.Message.Content != nil {
			msg.Content = *c.Message.Content
		}
		resp.Choices = append(resp.Choices, apim.Choice{
			Index:        c.Index,
			Message:      msg,
			FinishReason: apim.FinishReason(c.FinishReason),
		})
	}

	return resp
}
