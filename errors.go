package vaultkv

import "github.com/agentplexus/vaultkv/kv"

// Re-export common errors from the kv package for convenience.
var (
	ErrAddressNotSet = kv.ErrAddressNotSet
	ErrHomeNotSet    = kv.ErrHomeNotSet
	ErrTokenNotFound = kv.ErrTokenNotFound
	ErrFieldNotFound = kv.ErrFieldNotFound
	ErrEmptyRef      = kv.ErrEmptyRef
	ErrInvalidRef    = kv.ErrInvalidRef
)

// APIError is a server-reported failure (non-2xx status).
type APIError = kv.APIError

// DecodeError is a success response whose body did not match the expected
// shape.
type DecodeError = kv.DecodeError

// OpError annotates an error with the operation and secret path it came from.
type OpError = kv.OpError
