// Copyright (c) Microsoft. All rights reserved.

package apim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// AuthorizationHeader is the header used for bearer tokens.
const AuthorizationHeader = "Authorization"

// AuthHeader is a single header that authenticates an outbound request.
type AuthHeader struct {
	Name  string
	Value string
}

// Apply sets the header on req.
func (h AuthHeader) Apply(req *http.Request) {
	req.Header.Set(h.Name, h.Value)
}

// String redacts the value so headers are safe to log.
func (h AuthHeader) String() string {
	return h.Name + ": [REDACTED]"
}

// IsBearer reports whether h carries a bearer token.
func (h AuthHeader) IsBearer() bool {
	return strings.EqualFold(h.Name, AuthorizationHeader) && strings.HasPrefix(h.Value, "Bearer ")
}

// BearerToken returns the token portion of a bearer header.
func (h AuthHeader) BearerToken() string {
	if !h.IsBearer() {
		return ""
	}
	return strings.TrimPrefix(h.Value, "Bearer ")
}

// CredentialSource produces the auth header for the next request.
// Clients call it once per request.
type CredentialSource interface {
	AuthHeader(ctx context.Context) (AuthHeader, error)
}

// ResolveCredential returns the auth header for cfg's active mode.
//
// In key mode the header carries cfg.SubscriptionKey unmodified. In token
// mode a token is requested from tokens and returned as "Bearer <token>".
// Every failure is a [*CredentialError] and matches [ErrAuth]. Missing
// configuration (endpoint, key or audience, token source) additionally
// matches [ErrConfig] and is reported before any token is requested.
func ResolveCredential(ctx context.Context, cfg Config, tokens TokenSource) (AuthHeader, error) {
	mode, err := credentialConfig(cfg, tokens)
	if err != nil {
		return AuthHeader{}, err
	}
	cfg = cfg.WithDefaults()

	switch mode {
	case AuthModeKey:
		return AuthHeader{Name: cfg.SubscriptionKeyHeader, Value: cfg.SubscriptionKey}, nil

	default:
		slog.DebugContext(ctx, "acquiring bearer token", "scope", Scope(cfg.Audience))
		tok, err := tokens.Token(ctx)
		if err != nil {
			return AuthHeader{}, asCredentialError(err, Scope(cfg.Audience))
		}
		if tok.Value == "" {
			return AuthHeader{}, &CredentialError{Mode: AuthModeToken, Scope: Scope(cfg.Audience), Err: fmt.Errorf("identity provider returned an empty token")}
		}
		slog.DebugContext(ctx, "using bearer token authentication", "token_expires_on", tok.ExpiresOn)
		return AuthHeader{Name: AuthorizationHeader, Value: "Bearer " + tok.Value}, nil
	}
}

// credentialConfig checks everything a credential needs before a token is
// requested.
func credentialConfig(cfg Config, tokens TokenSource) (AuthMode, error) {
	fail := func(mode AuthMode, err error) (AuthMode, error) {
		return "", &CredentialError{Mode: mode, Scope: Scope(cfg.Audience), Err: err}
	}
	if err := cfg.ValidateEndpoint(); err != nil {
		return fail(cfg.Mode, err)
	}
	mode, err := cfg.AuthMode()
	if err != nil {
		return fail(cfg.Mode, err)
	}
	if mode == AuthModeToken && tokens == nil {
		return fail(mode, fmt.Errorf("%w: token mode requires a token source", ErrConfig))
	}
	return mode, nil
}

func asCredentialError(err error, scope string) error {
	var ce *CredentialError
	if errors.As(err, &ce) {
		return err
	}
	return &CredentialError{Mode: AuthModeToken, Scope: scope, Err: err}
}

// Authenticator binds a validated [Config] to a [TokenSource] and
// implements [CredentialSource].
type Authenticator struct {
	cfg    Config
	tokens TokenSource
}

var _ CredentialSource = (*Authenticator)(nil)

// NewAuthenticator validates cfg and returns an [Authenticator]. tokens
// may be nil in key mode. Errors match the same kinds as [ResolveCredential].
func NewAuthenticator(cfg Config, tokens TokenSource) (*Authenticator, error) {
	if _, err := credentialConfig(cfg, tokens); err != nil {
		return nil, err
	}
	return &Authenticator{cfg: cfg.WithDefaults(), tokens: tokens}, nil
}

// Mode returns the active authentication mode.
func (a *Authenticator) Mode() AuthMode {
	m, _ := a.cfg.AuthMode()
	return m
}

// AuthHeader implements [CredentialSource].
func (a *Authenticator) AuthHeader(ctx context.Context) (AuthHeader, error) {
	return ResolveCredential(ctx, a.cfg, a.tokens)
}

// StaticCredential is a [CredentialSource] that always returns the same header.
type StaticCredential AuthHeader

// AuthHeader implements [CredentialSource].
func (s StaticCredential) AuthHeader(context.Context) (AuthHeader, error) {
	return AuthHeader(s), nil
}

// Scope turns a token audience into an OAuth scope by appending
// "/.default" when it is not already present.
func Scope(audience string) string {
	if audience == "" || strings.HasSuffix(audience, "/.default") {
		return audience
	}
	return strings.TrimRight(audience, "/") + "/.default"
}
