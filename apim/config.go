// Copyright (c) Microsoft. All rights reserved.

package apim

import (
	"fmt"
	"net/url"
	"strings"
)

// Defaults applied by [Config.WithDefaults].
const (
	DefaultAPIVersion            = "2023-12-01-preview"
	DefaultDeployment            = "chat"
	DefaultSubscriptionKeyHeader = "api-key"
)

// AuthMode selects how outbound requests are authenticated.
type AuthMode string

const (
	// AuthModeKey sends a static subscription key header.
	AuthModeKey AuthMode = "key"

	// AuthModeToken sends a bearer token issued for Config.Audience.
	AuthModeToken AuthMode = "token"
)

// Config describes one gateway endpoint and how to authenticate to it.
// Exactly one authentication mode is active: either SubscriptionKey or
// Audience is set, never both unless Mode disambiguates.
type Config struct {
	// Endpoint is the gateway base URL without the /openai suffix,
	// e.g. "https://contoso.azure-api.net".
	Endpoint string `yaml:"endpoint"`

	// APIVersion is sent as the api-version query parameter.
	APIVersion string `yaml:"api_version"`

	// Deployment is the default model / deployment name.
	Deployment string `yaml:"deployment"`

	SubscriptionKey       string `yaml:"subscription_key"`
	SubscriptionKeyHeader string `yaml:"subscription_key_header"`

	// Audience is the resource the bearer token is requested for,
	// e.g. "https://cognitiveservices.azure.com".
	Audience string `yaml:"audience"`

	// Mode forces an authentication mode. Empty means inferred.
	Mode AuthMode `yaml:"mode"`
}

// WithDefaults returns a copy of c with empty optional fields filled in.
func (c Config) WithDefaults() Config {
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Deployment == "" {
		c.Deployment = DefaultDeployment
	}
	if c.SubscriptionKeyHeader == "" {
		c.SubscriptionKeyHeader = DefaultSubscriptionKeyHeader
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	return c
}

// AuthMode reports the active authentication mode, or an [ErrConfig]
// error if none or both are configured.
func (c Config) AuthMode() (AuthMode, error) {
	switch c.Mode {
	case AuthModeKey:
		if c.SubscriptionKey == "" {
			return "", fmt.Errorf("%w: key mode requires a subscription key", ErrConfig)
		}
		return AuthModeKey, nil
	case AuthModeToken:
		if c.Audience == "" {
			return "", fmt.Errorf("%w: token mode requires an audience", ErrConfig)
		}
		return AuthModeToken, nil
	case "":
	default:
		return "", fmt.Errorf("%w: unknown auth mode %q", ErrConfig, c.Mode)
	}

	hasKey, hasAudience := c.SubscriptionKey != "", c.Audience != ""
	switch {
	case hasKey && hasAudience:
		return "", fmt.Errorf("%w: both subscription key and token audience are set", ErrConfig)
	case hasKey:
		return AuthModeKey, nil
	case hasAudience:
		return AuthModeToken, nil
	default:
		return "", fmt.Errorf("%w: neither subscription key nor token audience is set", ErrConfig)
	}
}

// ValidateEndpoint checks that Endpoint is an absolute http(s) URL.
func (c Config) ValidateEndpoint() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrConfig)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint: %v", ErrConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint scheme must be http or https, got %q", ErrConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: endpoint %q has no host", ErrConfig, c.Endpoint)
	}
	return nil
}

// Validate checks the endpoint and the single-auth-mode invariant.
func (c Config) Validate() error {
	if err := c.ValidateEndpoint(); err != nil {
		return err
	}
	_, err := c.AuthMode()
	return err
}

// Merge overlays the non-empty fields of override onto c.
func (c Config) Merge(override Config) Config {
	if override.Endpoint != "" {
		c.Endpoint = override.Endpoint
	}
	if override.APIVersion != "" {
		c.APIVersion = override.APIVersion
	}
	if override.Deployment != "" {
		c.Deployment = override.Deployment
	}
	if override.SubscriptionKey != "" {
		c.SubscriptionKey = override.SubscriptionKey
	}
	if override.SubscriptionKeyHeader != "" {
		c.SubscriptionKeyHeader = override.SubscriptionKeyHeader
	}
	if override.Audience != "" {
		c.Audience = override.Audience
	}
	if override.Mode != "" {
		c.Mode = override.Mode
	}
	return c
}

// ChatCompletionsURL builds the deployment-scoped completion URL for model.
func (c Config) ChatCompletionsURL(model string) string {
	c = c.WithDefaults()
	q := url.Values{"api-version": []string{c.APIVersion}}
	return c.Endpoint + "/openai/deployments/" + url.PathEscape(model) + "/chat/completions?" + q.Encode()
}
