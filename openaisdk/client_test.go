// Copyright (c) Microsoft. All rights reserved.

package openaisdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/apim-openai/go/apim"
	"github.com/microsoft/apim-openai/go/openaisdk"
)

const fixedAnswer = "Yes, customer managed keys are supported."

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-sdk",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-35-turbo",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 20, "completion_tokens": 9, "total_tokens": 29},
	})
}

func newClient(t *testing.T, cfg apim.Config, tokens apim.TokenSource) *openaisdk.Client {
	t.Helper()
	auth, err := apim.NewAuthenticator(cfg, tokens)
	require.NoError(t, err)
	client, err := openaisdk.New(cfg, auth)
	require.NoError(t, err)
	return client
}

func TestClient_KeyMode(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-should-not-leak")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/deployments/chat/chat/completions", r.URL.Path)
		assert.Equal(t, apim.DefaultAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "sub-key", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeCompletion(w, fixedAnswer)
	}))
	defer server.Close()

	client := newClient(t, apim.Config{Endpoint: server.URL, SubscriptionKey: "sub-key"}, nil)

	resp, err := client.Response(context.Background(), []apim.Message{apim.NewUserMessage("hi")}, nil)
	require.NoError(t, err)
	assert.Equal(t, fixedAnswer, resp.Text())
	assert.Equal(t, "chatcmpl-sdk", resp.ID)
	assert.Equal(t, 29, resp.Usage.TotalTokens)
	assert.Equal(t, apim.FinishReasonStop, resp.Choices[0].FinishReason)
}

func TestClient_TokenModeLiteralRequest(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer aad-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeCompletion(w, fixedAnswer)
	}))
	defer server.Close()

	client := newClient(t,
		apim.Config{Endpoint: server.URL, Audience: "https://cognitiveservices.azure.com"},
		apim.StaticToken(apim.Token{Value: "aad-token"}),
	)

	answer, err := apim.Ask(context.Background(), client,
		"You are a helpful assistant.",
		"Does Azure OpenAI support customer managed keys?",
		&apim.ChatOptions{ModelID: "chat"},
	)
	require.NoError(t, err)
	assert.Equal(t, fixedAnswer, answer)

	assert.Equal(t, "chat", body.Model)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "You are a helpful assistant.", body.Messages[0].Content)
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.Equal(t, "Does Azure OpenAI support customer managed keys?", body.Messages[1].Content)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   error
	}{
		{"unauthorized", http.StatusUnauthorized, apim.ErrAuth},
		{"forbidden", http.StatusForbidden, apim.ErrAuth},
		{"server error", http.StatusInternalServerError, apim.ErrProvider},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"error":{"code":"Denied","message":"nope"}}`))
			}))
			defer server.Close()

			client := newClient(t, apim.Config{Endpoint: server.URL, SubscriptionKey: "k"}, nil)
			_, err := client.Response(context.Background(), []apim.Message{apim.NewUserMessage("hi")}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			var se *apim.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.status, se.StatusCode)
			assert.Equal(t, 1, calls, "no retries")
		})
	}
}

func TestClient_CredentialFailureSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		writeCompletion(w, "x")
	}))
	defer server.Close()

	idpErr := errors.New("AzureCLICredential: please run 'az login'")
	client := newClient(t,
		apim.Config{Endpoint: server.URL, Audience: "aud"},
		apim.TokenFunc(func(context.Context) (apim.Token, error) { return apim.Token{}, idpErr }),
	)

	_, err := client.Response(context.Background(), []apim.Message{apim.NewUserMessage("hi")}, nil)
	assert.ErrorIs(t, err, apim.ErrAuth)
	assert.False(t, called)
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newClient(t, apim.Config{Endpoint: url, SubscriptionKey: "k"}, nil)
	_, err := client.Response(context.Background(), []apim.Message{apim.NewUserMessage("hi")}, nil)
	assert.ErrorIs(t, err, apim.ErrRequest)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := openaisdk.New(apim.Config{SubscriptionKey: "k"}, apim.StaticCredential{Name: "api-key", Value: "k"})
	assert.ErrorIs(t, err, apim.ErrConfig)

	_, err = openaisdk.New(apim.Config{Endpoint: "https://x"}, apim.StaticCredential{Name: "api-key", Value: "k"})
	assert.ErrorIs(t, err, apim.ErrConfig)

	_, err = openaisdk.New(apim.Config{Endpoint: "https://x", SubscriptionKey: "k"}, nil)
	assert.ErrorIs(t, err, apim.ErrConfig)
}
