// Copyright (c) Microsoft. All rights reserved.

package apim

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment variable names read by [ConfigFromEnv]. Each primary name
// has a fallback matching the variable names used by the gateway samples.
const (
	EnvEndpoint              = "ENDPOINT_URL"
	EnvSubscriptionKey       = "SUBSCRIPTION_KEY"
	EnvTokenAudience         = "TOKEN_AUDIENCE"
	EnvAPIVersion            = "API_VERSION"
	EnvDeployment            = "DEPLOYMENT"
	EnvSubscriptionKeyHeader = "SUBSCRIPTION_KEY_HEADER"
	EnvAuthMode              = "AUTH_MODE"

	envEndpointFallback        = "APIM_ENDPOINT"
	envSubscriptionKeyFallback = "APIM_SUBSCRIPTION_KEY"
	envTokenAudienceFallback   = "AZURE_AUDIENCE"
)

// ConfigFromEnv builds a [Config] from getenv. It does not validate;
// call [Config.Validate] or pass the result to a client constructor.
func ConfigFromEnv(getenv func(string) string) Config {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				return v
			}
		}
		return ""
	}
	return Config{
		Endpoint:              first(EnvEndpoint, envEndpointFallback),
		SubscriptionKey:       first(EnvSubscriptionKey, envSubscriptionKeyFallback),
		Audience:              first(EnvTokenAudience, envTokenAudienceFallback),
		APIVersion:            getenv(EnvAPIVersion),
		Deployment:            getenv(EnvDeployment),
		SubscriptionKeyHeader: getenv(EnvSubscriptionKeyHeader),
		Mode:                  AuthMode(getenv(EnvAuthMode)),
	}
}

// LoadConfig reads dotenv files and overlays the process environment.
// With no arguments it reads ".env" and ignores it if missing; files named
// explicitly must exist. Process environment values win over file values.
func LoadConfig(files ...string) (Config, error) {
	vars, err := readDotenv(files)
	if err != nil {
		return Config{}, err
	}
	return ConfigFromEnv(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return vars[key]
	}), nil
}

func readDotenv(files []string) (map[string]string, error) {
	if len(files) == 0 {
		vars, err := godotenv.Read(".env")
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read .env: %v", ErrConfig, err)
		}
		return vars, nil
	}
	vars, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("%w: read env files: %v", ErrConfig, err)
	}
	return vars, nil
}

// LoadConfigFile reads a YAML configuration file.
//
//	endpoint: https://contoso.azure-api.net
//	api_version: "2023-12-01-preview"
//	deployment: chat
//	audience: https://cognitiveservices.azure.com
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read config file: %v", ErrConfig, err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse config file %s: %v", ErrConfig, path, err)
	}
	return cfg, nil
}
