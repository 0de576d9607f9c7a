// Copyright (c) Microsoft. All rights reserved.

package apim

import "fmt"

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Choice is one completion returned by the provider.
type Choice struct {
	Index        int
	Message      Message
	FinishReason FinishReason
}

// UsageDetails holds token consumption statistics for a response.
type UsageDetails struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ChatResponse is the provider's answer to one chat request. Only the
// first choice is consumed by callers; the rest is kept for inspection.
type ChatResponse struct {
	ID      string
	Model   string
	Choices []Choice
	Usage   UsageDetails

	// Raw holds the backend-specific response value.
	Raw any
}

// FirstChoice returns the first choice, or [ErrInvalidResponse] if the
// provider returned none.
func (r *ChatResponse) FirstChoice() (Choice, error) {
	if r == nil || len(r.Choices) == 0 {
		return Choice{}, fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}
	return r.Choices[0], nil
}

// Text returns the first choice's message content, or "" if there is none.
func (r *ChatResponse) Text() string {
	c, err := r.FirstChoice()
	if err != nil {
		return ""
	}
	return c.Message.Content
}
