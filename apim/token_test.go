// Copyright (c) Microsoft. All rights reserved.

package apim_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/microsoft/apim-openai/go/apim"
)

func TestTokenExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tok  apim.Token
		skew time.Duration
		want bool
	}{
		{"zero expiry never expires", apim.Token{Value: "x"}, time.Hour, false},
		{"future", apim.Token{ExpiresOn: now.Add(10 * time.Minute)}, time.Minute, false},
		{"within skew", apim.Token{ExpiresOn: now.Add(30 * time.Second)}, time.Minute, true},
		{"exactly at skew", apim.Token{ExpiresOn: now.Add(time.Minute)}, time.Minute, true},
		{"past", apim.Token{ExpiresOn: now.Add(-time.Second)}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tok.Expired(now, tc.skew); got != tc.want {
				t.Errorf("Expired = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTokenCache_RefreshOnlyWhenNeeded(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	cache := apim.NewTokenCache(func(context.Context) (apim.Token, error) {
		calls++
		return apim.Token{Value: "t", ExpiresOn: now.Add(time.Hour)}, nil
	}, apim.WithClock(func() time.Time { return now }), apim.WithRefreshSkew(5*time.Minute))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cache.Token(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 while valid", calls)
	}

	now = now.Add(56 * time.Minute)
	if _, err := cache.Token(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want refresh inside skew window", calls)
	}

	cache.Invalidate()
	if _, err := cache.Token(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want refresh after Invalidate", calls)
	}
}

func TestTokenCache_FailedRefreshNotCached(t *testing.T) {
	fail := true
	calls := 0
	cache := apim.NewTokenCache(func(context.Context) (apim.Token, error) {
		calls++
		if fail {
			return apim.Token{}, errors.New("idp down")
		}
		return apim.Token{Value: "ok"}, nil
	})

	if _, err := cache.Token(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	tok, err := cache.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tok.Value != "ok" || calls != 2 {
		t.Errorf("tok = %q, calls = %d", tok.Value, calls)
	}
}

func TestTokenCache_ConcurrentCallersShareRefresh(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	cache := apim.NewTokenCache(func(context.Context) (apim.Token, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		return apim.Token{Value: "shared", ExpiresOn: time.Now().Add(time.Hour)}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tok, err := cache.Token(context.Background()); err != nil || tok.Value != "shared" {
				t.Errorf("Token = %q, %v", tok.Value, err)
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTokenCache_WaiterHonoursContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	cache := apim.NewTokenCache(func(context.Context) (apim.Token, error) {
		close(started)
		<-release
		return apim.Token{Value: "slow"}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := cache.Token(context.Background())
		done <- err
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cache.Token(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("refreshing caller: %v", err)
	}
	tok, err := cache.Token(context.Background())
	if err != nil || tok.Value != "slow" {
		t.Errorf("Token = %q, %v", tok.Value, err)
	}
}

// fakeCredential implements azcore.TokenCredential.
type fakeCredential struct {
	scopes []string
	token  azcore.AccessToken
	err    error
}

func (f *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	f.scopes = opts.Scopes
	return f.token, f.err
}

func TestCredentialTokenFunc(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	cred := &fakeCredential{token: azcore.AccessToken{Token: "aad-token", ExpiresOn: exp}}

	tok, err := apim.CredentialTokenFunc(cred, "https://cognitiveservices.azure.com")(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tok.Value != "aad-token" || !tok.ExpiresOn.Equal(exp) {
		t.Errorf("tok = %+v", tok)
	}
	if len(cred.scopes) != 1 || cred.scopes[0] != "https://cognitiveservices.azure.com/.default" {
		t.Errorf("scopes = %v", cred.scopes)
	}

	cred.err = errors.New("DefaultAzureCredential: failed to acquire a token")
	_, err = apim.CredentialTokenFunc(cred, "aud")(context.Background())
	if !errors.Is(err, apim.ErrAuth) || !errors.Is(err, cred.err) {
		t.Errorf("err = %v, want ErrAuth wrapping cause", err)
	}
}
