// Copyright (c) Microsoft. All rights reserved.

package apim_test

import (
	"errors"
	"testing"

	"github.com/microsoft/apim-openai/go/apim"
)

func TestConfigAuthMode(t *testing.T) {
	tests := []struct {
		name    string
		cfg     apim.Config
		want    apim.AuthMode
		wantErr bool
	}{
		{"key inferred", apim.Config{SubscriptionKey: "k"}, apim.AuthModeKey, false},
		{"token inferred", apim.Config{Audience: "a"}, apim.AuthModeToken, false},
		{"both without mode", apim.Config{SubscriptionKey: "k", Audience: "a"}, "", true},
		{"neither", apim.Config{}, "", true},
		{"both with key mode", apim.Config{SubscriptionKey: "k", Audience: "a", Mode: apim.AuthModeKey}, apim.AuthModeKey, false},
		{"both with token mode", apim.Config{SubscriptionKey: "k", Audience: "a", Mode: apim.AuthModeToken}, apim.AuthModeToken, false},
		{"key mode without key", apim.Config{Audience: "a", Mode: apim.AuthModeKey}, "", true},
		{"token mode without audience", apim.Config{SubscriptionKey: "k", Mode: apim.AuthModeToken}, "", true},
		{"unknown mode", apim.Config{SubscriptionKey: "k", Mode: "basic"}, "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.cfg.AuthMode()
			if tc.wantErr {
				if !errors.Is(err, apim.ErrConfig) {
					t.Fatalf("err = %v, want ErrConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("mode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConfigValidateEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		ok       bool
	}{
		{"https://contoso.azure-api.net", true},
		{"http://localhost:8080", true},
		{"", false},
		{"   ", false},
		{"contoso.azure-api.net", false},
		{"ftp://contoso", false},
		{"https://", false},
	}
	for _, tc := range tests {
		err := apim.Config{Endpoint: tc.endpoint}.ValidateEndpoint()
		if tc.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tc.endpoint, err)
		}
		if !tc.ok && !errors.Is(err, apim.ErrConfig) {
			t.Errorf("%q: err = %v, want ErrConfig", tc.endpoint, err)
		}
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := apim.Config{Endpoint: "https://contoso.azure-api.net/"}.WithDefaults()
	if cfg.Endpoint != "https://contoso.azure-api.net" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.APIVersion != apim.DefaultAPIVersion {
		t.Errorf("APIVersion = %q", cfg.APIVersion)
	}
	if cfg.Deployment != "chat" {
		t.Errorf("Deployment = %q", cfg.Deployment)
	}
	if cfg.SubscriptionKeyHeader != "api-key" {
		t.Errorf("SubscriptionKeyHeader = %q", cfg.SubscriptionKeyHeader)
	}
}

func TestConfigChatCompletionsURL(t *testing.T) {
	cfg := apim.Config{Endpoint: "https://contoso.azure-api.net/", APIVersion: "2024-02-01"}
	got := cfg.ChatCompletionsURL("gpt 4")
	want := "https://contoso.azure-api.net/openai/deployments/gpt%204/chat/completions?api-version=2024-02-01"
	if got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
}

func TestConfigMerge(t *testing.T) {
	base := apim.Config{Endpoint: "https://a", Deployment: "chat", Audience: "aud"}
	merged := base.Merge(apim.Config{Endpoint: "https://b", APIVersion: "v2"})
	if merged.Endpoint != "https://b" || merged.APIVersion != "v2" {
		t.Errorf("override not applied: %+v", merged)
	}
	if merged.Deployment != "chat" || merged.Audience != "aud" {
		t.Errorf("base fields lost: %+v", merged)
	}
}
