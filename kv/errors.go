package kv

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors, returned before any network call is attempted.
var (
	// ErrAddressNotSet is returned when no server address was given and the
	// VAULT_ADDR environment variable is unset.
	ErrAddressNotSet = errors.New("vault address not set: pass Config.Address or set VAULT_ADDR")

	// ErrHomeNotSet is returned when the token file lookup needs the home
	// directory but the HOME environment variable is unset.
	ErrHomeNotSet = errors.New("cannot locate token file: HOME is not set")

	// ErrTokenNotFound is returned when no token was given and the token
	// file does not exist under the home directory.
	ErrTokenNotFound = errors.New("vault token not found: pass Config.Token or create ~/.vault-token")
)

// ErrFieldNotFound is returned when a resolved secret payload has no entry
// for the requested field.
var ErrFieldNotFound = errors.New("field not found in secret")

// APIError is a server-reported failure: the HTTP status was outside the
// success range. Messages holds the decoded "errors" array from the response
// body when it could be parsed; RawBody holds the body text otherwise.
type APIError struct {
	StatusCode int
	Messages   []string
	RawBody    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("vault: status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("vault: status %d: %s", e.StatusCode, e.RawBody)
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == 404
}

// PermissionDenied reports whether the server answered 403.
func (e *APIError) PermissionDenied() bool {
	return e.StatusCode == 403
}

// DecodeError is a protocol mismatch: the server reported success but the
// response body did not have the shape this client expected. It is distinct
// from APIError so callers can tell "the service rejected the request" apart
// from "client and service disagree about the protocol".
type DecodeError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("vault: decoding %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("vault: decoding response: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// OpError annotates an error with the operation and secret path it came
// from. Every public client operation wraps its failures in an OpError.
type OpError struct {
	Op   string
	Path SecretPath
	Err  error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("vaultkv: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("vaultkv: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError.
func NewOpError(op string, path SecretPath, err error) *OpError {
	return &OpError{Op: op, Path: path, Err: err}
}
