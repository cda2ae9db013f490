package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/agentplexus/vaultkv/kv"
)

// errorBody is the shape Vault uses to report failures.
type errorBody struct {
	Errors []string `json:"errors"`
}

// ok reports whether the status is in the success range.
func ok(status int) bool {
	return status >= 200 && status <= 299
}

// serviceError turns a non-2xx response into an APIError. The "errors" array
// is surfaced when the body parses; otherwise the raw body text is kept.
func serviceError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Errors) > 0 {
		return &kv.APIError{StatusCode: status, Messages: eb.Errors}
	}
	return &kv.APIError{StatusCode: status, RawBody: string(body)}
}

// DecodeEmpty handles responses from effect-only operations: any success
// status is fine regardless of body content, anything else is an APIError.
func DecodeEmpty(status int, body []byte) error {
	if !ok(status) {
		return serviceError(status, body)
	}
	return nil
}

// DecodeSecret extracts the secret payload from a read response
// ({"data":{"data":{...}}}).
func DecodeSecret(status int, body []byte) (kv.SecretData, error) {
	if !ok(status) {
		return nil, serviceError(status, body)
	}

	var env struct {
		Data *struct {
			Data kv.SecretData `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &kv.DecodeError{Field: "data.data", Err: err}
	}
	if env.Data == nil || env.Data.Data == nil {
		return nil, &kv.DecodeError{Field: "data.data", Err: errors.New("field missing")}
	}
	return env.Data.Data, nil
}

// DecodeWrite extracts the assigned version number from a write response
// ({"data":{"version":N}}).
func DecodeWrite(status int, body []byte) (kv.Version, error) {
	if !ok(status) {
		return 0, serviceError(status, body)
	}

	var env struct {
		Data *struct {
			Version *json.Number `json:"version"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, &kv.DecodeError{Field: "data.version", Err: err}
	}
	if env.Data == nil || env.Data.Version == nil {
		return 0, &kv.DecodeError{Field: "data.version", Err: errors.New("field missing")}
	}
	return decodeVersion("data.version", *env.Data.Version)
}

// DecodeKeys extracts the key list from a listing response
// ({"data":{"keys":[...]}}).
func DecodeKeys(status int, body []byte) ([]kv.Key, error) {
	if !ok(status) {
		return nil, serviceError(status, body)
	}

	var env struct {
		Data *struct {
			Keys []kv.Key `json:"keys"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &kv.DecodeError{Field: "data.keys", Err: err}
	}
	if env.Data == nil || env.Data.Keys == nil {
		return nil, &kv.DecodeError{Field: "data.keys", Err: errors.New("field missing")}
	}
	return env.Data.Keys, nil
}

// DecodeMetadata extracts the version history from a metadata read
// ({"data":{"current_version":N,"oldest_version":N,"versions":{"1":{...}}}}).
func DecodeMetadata(status int, body []byte) (*kv.SecretMetadata, error) {
	if !ok(status) {
		return nil, serviceError(status, body)
	}

	var env struct {
		Data *struct {
			CurrentVersion json.Number                   `json:"current_version"`
			OldestVersion  json.Number                   `json:"oldest_version"`
			Versions       map[string]kv.VersionMetadata `json:"versions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &kv.DecodeError{Field: "data", Err: err}
	}
	if env.Data == nil || env.Data.Versions == nil {
		return nil, &kv.DecodeError{Field: "data.versions", Err: errors.New("field missing")}
	}

	meta := &kv.SecretMetadata{
		Versions: make(map[kv.Version]kv.VersionMetadata, len(env.Data.Versions)),
	}

	var err error
	if meta.CurrentVersion, err = decodeVersion("data.current_version", env.Data.CurrentVersion); err != nil {
		return nil, err
	}
	if meta.OldestVersion, err = decodeVersion("data.oldest_version", env.Data.OldestVersion); err != nil {
		return nil, err
	}

	for key, vm := range env.Data.Versions {
		n, convErr := strconv.Atoi(key)
		if convErr != nil || n < 0 {
			return nil, &kv.DecodeError{
				Field: "data.versions",
				Err:   fmt.Errorf("version key %q is not a non-negative integer", key),
			}
		}
		meta.Versions[kv.Version(n)] = vm
	}
	return meta, nil
}

// DecodeRaw returns the whole response body as a generic JSON object, for
// operations whose response carries no structured fields worth extracting.
func DecodeRaw(status int, body []byte) (map[string]any, error) {
	if !ok(status) {
		return nil, serviceError(status, body)
	}
	if len(body) == 0 {
		return nil, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &kv.DecodeError{Err: err}
	}
	return raw, nil
}

// decodeVersion converts a JSON number into a Version. Absent values decode
// as zero upstream; a negative or non-integer value is a protocol mismatch,
// never silently clamped.
func decodeVersion(field string, num json.Number) (kv.Version, error) {
	if num == "" {
		return 0, nil
	}
	n, err := num.Int64()
	if err != nil {
		return 0, &kv.DecodeError{Field: field, Err: fmt.Errorf("%q is not an integer", num.String())}
	}
	if n < 0 {
		return 0, &kv.DecodeError{Field: field, Err: fmt.Errorf("negative version %d", n)}
	}
	return kv.Version(n), nil
}
