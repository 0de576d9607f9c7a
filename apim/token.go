// Copyright (c) Microsoft. All rights reserved.

package apim

import (
	"context"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// DefaultRefreshSkew is how long before expiry a cached token is treated
// as expired.
const DefaultRefreshSkew = 2 * time.Minute

// Token is a bearer token issued by an identity provider.
type Token struct {
	Value     string
	ExpiresOn time.Time
}

// Expired reports whether t is unusable at now. A zero ExpiresOn never
// expires.
func (t Token) Expired(now time.Time, skew time.Duration) bool {
	if t.ExpiresOn.IsZero() {
		return false
	}
	return !now.Add(skew).Before(t.ExpiresOn)
}

// TokenSource supplies bearer tokens.
type TokenSource interface {
	Token(ctx context.Context) (Token, error)
}

// TokenFunc fetches a fresh token from an identity provider.
type TokenFunc func(ctx context.Context) (Token, error)

// Token implements [TokenSource] by calling f.
func (f TokenFunc) Token(ctx context.Context) (Token, error) { return f(ctx) }

// CredentialTokenFunc adapts an azcore credential, such as azidentity's
// DefaultAzureCredential, into a [TokenFunc] scoped to audience.
func CredentialTokenFunc(cred azcore.TokenCredential, audience string) TokenFunc {
	scope := Scope(audience)
	return func(ctx context.Context) (Token, error) {
		at, err := cred.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{scope},
		})
		if err != nil {
			return Token{}, &CredentialError{Mode: AuthModeToken, Scope: scope, Err: err}
		}
		return Token{Value: at.Token, ExpiresOn: at.ExpiresOn}, nil
	}
}

// StaticToken returns a [TokenSource] that always yields t.
func StaticToken(t Token) TokenSource {
	return TokenFunc(func(context.Context) (Token, error) { return t, nil })
}

// TokenCache owns a single {token, expiry} pair and calls its refresh
// function only when the pair is absent or expired. It is safe for
// concurrent use; concurrent callers share one refresh. Create one with
// [NewTokenCache].
type TokenCache struct {
	fetch TokenFunc
	skew  time.Duration
	now   func() time.Time

	// sem is a one-slot lock that waiters can abandon on ctx.Done.
	sem    chan struct{}
	cached *Token
}

var _ TokenSource = (*TokenCache)(nil)

// TokenCacheOption configures a [TokenCache].
type TokenCacheOption func(*TokenCache)

// WithRefreshSkew overrides [DefaultRefreshSkew].
func WithRefreshSkew(d time.Duration) TokenCacheOption {
	return func(c *TokenCache) { c.skew = d }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) TokenCacheOption {
	return func(c *TokenCache) { c.now = now }
}

// NewTokenCache creates a cache that refreshes through fetch.
func NewTokenCache(fetch TokenFunc, opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{
		fetch: fetch,
		skew:  DefaultRefreshSkew,
		now:   time.Now,
		sem:   make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Token returns the cached token, refreshing it first if needed.
// A failed refresh leaves the cache empty. If another caller is refreshing,
// Token waits for it unless ctx ends first.
func (c *TokenCache) Token(ctx context.Context) (Token, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return Token{}, ctx.Err()
	}
	defer func() { <-c.sem }()

	if c.cached != nil && !c.cached.Expired(c.now(), c.skew) {
		return *c.cached, nil
	}

	slog.DebugContext(ctx, "refreshing bearer token", "had_token", c.cached != nil)
	c.cached = nil
	tok, err := c.fetch(ctx)
	if err != nil {
		return Token{}, err
	}
	c.cached = &tok
	return tok, nil
}

// Invalidate drops the cached token so the next call refreshes.
func (c *TokenCache) Invalidate() {
	c.sem <- struct{}{}
	c.cached = nil
	<-c.sem
}
