// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/microsoft/apim-openai/go/apim"
)

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 64 * 1024

// transport is an unexported interface for HTTP communication.
// The default implementation uses net/http; tests inject a mock.
type transport interface {
	do(ctx context.Context, url string, auth apim.AuthHeader, body any) (*http.Response, error)
}

// httpTransport is the default transport using net/http.
type httpTransport struct {
	client  *http.Client
	headers map[string]string
}

func newHTTPTransport(opts *clientConfig) *httpTransport {
	t := &httpTransport{
		client:  opts.httpClient,
		headers: opts.headers,
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	return t
}

func (t *httpTransport) do(ctx context.Context, url string, auth apim.AuthHeader, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", apim.ErrConfig, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", apim.ErrConfig, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-ms-client-request-id", requestID)
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	auth.Apply(req)

	slog.DebugContext(ctx, "sending chat completion request",
		"url", req.URL.Redacted(),
		"auth", auth.String(),
		"request_id", requestID,
	)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, apim.RequestError("http request", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseErrorResponse(resp)
	}

	return resp, nil
}

// parseErrorResponse reads an error response body and returns a typed error.
// Both the Azure OpenAI shape {"error":{"code","message"}} and the API
// Management shape {"statusCode","message"} are understood.
func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var apiErr struct {
		Error struct {
			Message string          `json:"message"`
			Type    string          `json:"type"`
			Code    json.RawMessage `json:"code"`
		} `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = apiErr.Message
	}
	code := rawCode(apiErr.Error.Code)
	if code == "" {
		code = apiErr.Error.Type
	}

	return apim.NewStatusError(resp.StatusCode, code, msg, string(body))
}

// rawCode renders an error code that may be a JSON string, number or null.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if s, err := strconv.Unquote(string(raw)); err == nil {
		return s
	}
	return string(raw)
}
