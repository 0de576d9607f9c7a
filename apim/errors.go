// Copyright (c) Microsoft. All rights reserved.

package apim

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrClient is the base error for every failure surfaced by this module.
	ErrClient = errors.New("apim client error")

	// ErrConfig indicates missing or inconsistent endpoint configuration.
	// It is always returned before any network call is attempted.
	ErrConfig = fmt.Errorf("%w: configuration", ErrClient)

	// ErrAuth indicates a credential acquisition failure or a 401/403 from
	// the gateway.
	ErrAuth = fmt.Errorf("%w: authentication", ErrClient)

	// ErrRequest indicates a transport-level failure (DNS, TLS, connection
	// reset, cancelled context).
	ErrRequest = fmt.Errorf("%w: request", ErrClient)

	// ErrProvider indicates a non-success response not otherwise classified.
	ErrProvider = fmt.Errorf("%w: provider", ErrClient)

	// ErrInvalidResponse indicates a success status with a body that could
	// not be used (malformed JSON, no choices).
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrProvider)
)

// StatusError carries the provider's status code and body for a non-2xx
// response. Err is [ErrAuth] for 401/403 and [ErrProvider] otherwise.
// Use errors.As to extract it from a wrapped error chain.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }

// NewStatusError classifies a non-2xx status into a [StatusError].
// An empty message falls back to the raw body.
func NewStatusError(status int, code, message, body string) *StatusError {
	if message == "" {
		message = body
	}
	err := ErrProvider
	if status == 401 || status == 403 {
		err = ErrAuth
	}
	return &StatusError{
		StatusCode: status,
		Code:       code,
		Message:    message,
		Body:       body,
		Err:        err,
	}
}

// CredentialError reports a failure to produce a credential, either from
// incomplete configuration or from the identity provider. It matches both
// [ErrAuth] and the underlying cause.
type CredentialError struct {
	Mode  AuthMode
	Scope string
	Err   error
}

func (e *CredentialError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("acquire %s credential for %q: %v", e.Mode, e.Scope, e.Err)
	}
	if e.Mode == "" {
		return fmt.Sprintf("resolve credential: %v", e.Err)
	}
	return fmt.Sprintf("acquire %s credential: %v", e.Mode, e.Err)
}

func (e *CredentialError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAuth}
	}
	return []error{ErrAuth, e.Err}
}

// RequestError wraps a transport failure so it matches [ErrRequest] while
// keeping the cause reachable.
func RequestError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRequest, op, err)
}
