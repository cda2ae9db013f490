// Package api builds HTTP requests for and decodes responses from Vault's
// KV version 2 API. It is a pure mapping layer: nothing here performs I/O
// beyond what the caller's http.Client does with the returned requests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentplexus/vaultkv/kv"
)

// KV v2 URL segments. Every endpoint has the form
// <address>/v1/<mount>/<segment>/<path>; the data and metadata segments share
// a path namespace but data returns payloads while metadata returns version
// history.
const (
	SegmentData     = "data"
	SegmentMetadata = "metadata"
	SegmentDelete   = "delete"
	SegmentUndelete = "undelete"
	SegmentDestroy  = "destroy"
	SegmentConfig   = "config"
)

// Request headers.
const (
	HeaderToken       = "X-Vault-Token"
	HeaderContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Mount addresses one KV v2 engine: a normalized server address plus the
// path the engine is mounted under.
type Mount struct {
	Address string
	Path    string
}

// NewMount normalizes the address and engine path into a Mount. Trailing
// slashes on the address and surrounding slashes on the engine path are
// stripped so URL construction can join segments uniformly.
func NewMount(address, enginePath string) Mount {
	return Mount{
		Address: strings.TrimSuffix(address, "/"),
		Path:    strings.Trim(enginePath, "/"),
	}
}

// URL builds the endpoint URL for a segment and secret path. An empty path
// addresses the segment itself (used by the engine config endpoint). The
// query may be nil.
func (m Mount) URL(segment string, path kv.SecretPath, query url.Values) string {
	var b strings.Builder
	b.WriteString(m.Address)
	b.WriteString("/v1/")
	b.WriteString(m.Path)
	b.WriteByte('/')
	b.WriteString(segment)
	if path != "" {
		b.WriteByte('/')
		b.WriteString(strings.TrimPrefix(path.String(), "/"))
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// ReadQuery returns the query values for a versioned read. Version 0 means
// "current" and produces no query at all; the KV engine treats an absent
// version parameter as the latest version.
func ReadQuery(version kv.Version) url.Values {
	if version.IsCurrent() {
		return nil
	}
	return url.Values{"version": []string{fmt.Sprintf("%d", version)}}
}

// ListQuery returns the query values for a listing request.
func ListQuery() url.Values {
	return url.Values{"list": []string{"true"}}
}

// writeOptions is the "options" object of a write body. CAS is a pointer so
// the key is omitted entirely for unchecked writes.
type writeOptions struct {
	CAS *int `json:"cas,omitempty"`
}

// writeBody is the body of a PUT (write) request.
type writeBody struct {
	Options writeOptions  `json:"options"`
	Data    kv.SecretData `json:"data"`
}

// versionsBody is the body of the bulk delete/undelete/destroy requests.
type versionsBody struct {
	Versions []int `json:"versions"`
}

// WriteBody builds the body of a secret write. The cas key is absent for
// WriteAllowed, 0 for CreateOnly, and n for CurrentVersion(n).
func WriteBody(data kv.SecretData, cas kv.CheckAndSet) any {
	body := writeBody{Data: data}
	if v, ok := cas.Value(); ok {
		n := int(v)
		body.Options.CAS = &n
	}
	return body
}

// VersionsBody builds the body of a versioned bulk operation.
func VersionsBody(versions kv.Versions) any {
	return versionsBody{Versions: versions.Ints()}
}

// NewRequest creates an HTTP request carrying the vault token header and,
// when body is non-nil, a JSON body with the matching content type.
func NewRequest(ctx context.Context, method, rawURL, token string, body any) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, rawURL, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, rawURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(HeaderToken, token)
	if body != nil {
		req.Header.Set(HeaderContentType, contentTypeJSON)
	}
	return req, nil
}
