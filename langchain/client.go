// Copyright (c) Microsoft. All rights reserved.

// Package langchain provides an [apim.ChatClient] that goes through the
// langchaingo orchestration library instead of calling the endpoint
// directly.
//
// langchaingo takes a static credential, so [New] resolves the auth header
// once and the client keeps using it for its lifetime. Build a new client
// when a bearer token expires.
//
// langchaingo does not expose the provider's response id or model, so
// [apim.ChatResponse.ID] is always empty and Model holds the requested
// deployment rather than the model name the service reports.
package langchain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/microsoft/apim-openai/go/apim"
)

// Client implements [apim.ChatClient] using langchaingo's OpenAI model in
// Azure or Azure AD mode.
type Client struct {
	llm     *lcopenai.LLM
	cfg     apim.Config
	handler apim.ChatHandler
}

var _ apim.ChatClient = (*Client)(nil)

// New validates cfg, resolves one auth header from creds and creates a
// [Client] bound to it.
func New(ctx context.Context, cfg apim.Config, creds apim.CredentialSource, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, fmt.Errorf("%w: credential source is required", apim.ErrConfig)
	}
	o := &clientConfig{}
	for _, opt := range opts {
		opt(o)
	}
	cfg = cfg.WithDefaults()

	auth, err := creds.AuthHeader(ctx)
	if err != nil {
		return nil, err
	}

	base := o.httpClient
	if base == nil {
		base = http.DefaultClient
	}

	apiType, token := lcopenai.APITypeAzure, auth.Value
	if auth.IsBearer() {
		apiType, token = lcopenai.APITypeAzureAD, auth.BearerToken()
	}

	llm, err := lcopenai.New(
		lcopenai.WithAPIType(apiType),
		lcopenai.WithToken(token),
		lcopenai.WithBaseURL(cfg.Endpoint),
		lcopenai.WithAPIVersion(cfg.APIVersion),
		lcopenai.WithModel(cfg.Deployment),
		lcopenai.WithHTTPClient(&recordingDoer{auth: auth, next: base}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: langchain model: %v", apim.ErrConfig, err)
	}

	c := &Client{llm: llm, cfg: cfg}
	c.handler = apim.ChainChatMiddleware(c.coreResponse, o.chatMiddleware...)
	return c, nil
}

// Response sends one chat completion request and returns the response.
func (c *Client) Response(ctx context.Context, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

func (c *Client) coreResponse(ctx context.Context, messages []apim.Message, opts *apim.ChatOptions) (*apim.ChatResponse, error) {
	model := opts.ModelOr(c.cfg.Deployment)
	callOpts := []llms.CallOption{llms.WithModel(model)}
	if opts != nil {
		if opts.Temperature != nil {
			callOpts = append(callOpts, llms.WithTemperature(*opts.Temperature))
		}
		if opts.MaxTokens != nil {
			callOpts = append(callOpts, llms.WithMaxTokens(*opts.MaxTokens))
		}
	}

	rec := &failure{}
	ctx = context.WithValue(ctx, failureKey{}, rec)

	out, err := c.llm.GenerateContent(ctx, toMessageContent(messages), callOpts...)
	if err != nil {
		return nil, classify(err, rec)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", apim.ErrInvalidResponse)
	}

	// No id or provider model on llms.ContentResponse.
	resp := &apim.ChatResponse{Model: model, Raw: out}
	for i, ch := range out.Choices {
		resp.Choices = append(resp.Choices, apim.Choice{
			Index:        i,
			Message:      apim.NewAssistantMessage(ch.Content),
			FinishReason: apim.FinishReason(ch.StopReason),
		})
	}
	info := out.Choices[0].GenerationInfo
	resp.Usage = apim.UsageDetails{
		InputTokens:  intInfo(info, "PromptTokens"),
		OutputTokens: intInfo(info, "CompletionTokens"),
		TotalTokens:  intInfo(info, "TotalTokens"),
	}
	return resp, nil
}

func toMessageContent(messages []apim.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case apim.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case apim.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// failure captures the first non-2xx response seen during one call, since
// langchaingo reports provider errors as plain strings.
type failure struct {
	mu     sync.Mutex
	status int
	body   []byte
}

type failureKey struct{}

// recordingDoer pins the resolved auth header on every request and records
// failed responses into the call's [failure].
type recordingDoer struct {
	auth apim.AuthHeader
	next *http.Client
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Del("api-key")
	req.Header.Del(apim.AuthorizationHeader)
	d.auth.Apply(req)

	resp, err := d.next.Do(req)
	if err != nil || (resp.StatusCode >= 200 && resp.StatusCode <= 299) {
		return resp, err
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if rec, ok := req.Context().Value(failureKey{}).(*failure); ok {
		rec.mu.Lock()
		if rec.status == 0 {
			rec.status, rec.body = resp.StatusCode, body
		}
		rec.mu.Unlock()
	}
	return resp, nil
}

// classify maps a langchaingo error onto the apim error kinds.
func classify(err error, rec *failure) error {
	rec.mu.Lock()
	status, body := rec.status, rec.body
	rec.mu.Unlock()

	if status != 0 {
		var e struct {
			Error struct {
				Code    json.RawMessage `json:"code"`
				Message string          `json:"message"`
			} `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &e)
		msg := e.Error.Message
		if msg == "" {
			msg = e.Message
		}
		code := string(e.Error.Code)
		if s, uerr := strconv.Unquote(code); uerr == nil {
			code = s
		}
		if code == "null" {
			code = ""
		}
		return apim.NewStatusError(status, code, msg, string(body))
	}

	switch {
	case errors.Is(err, apim.ErrClient):
		return err
	case errors.Is(err, lcopenai.ErrEmptyResponse):
		return fmt.Errorf("%w: %v", apim.ErrInvalidResponse, err)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: parse response: %v", apim.ErrInvalidResponse, err)
	}
	return apim.RequestError("generate content", err)
}
