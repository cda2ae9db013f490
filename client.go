// Package vaultkv is a client for HashiCorp Vault's KV version 2 secrets
// engine. It covers the full versioned lifecycle: create, read, update,
// soft-delete, undelete, permanently destroy, and enumerate secrets and
// their metadata.
//
// Basic usage:
//
//	client, err := vaultkv.NewClient(vaultkv.Config{
//	    Address: "https://vault.example.com:8200",
//	    Mount:   "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	version, err := client.PutSecret(ctx, "app/db",
//	    kv.SecretData{"password": "hunter2"}, kv.CreateOnly())
//
//	data, err := client.GetSecret(ctx, "app/db")
//
// When Address or Token are omitted they are resolved from VAULT_ADDR and
// ~/.vault-token, the same places the vault CLI uses.
//
// Every operation is a single stateless request/response round trip; the
// client holds no mutable state and is safe for concurrent use.
package vaultkv

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentplexus/vaultkv/internal/api"
	"github.com/agentplexus/vaultkv/kv"
)

// Client talks to one KV v2 engine mount on one Vault server. Create it with
// NewClient; the zero value is not usable.
type Client struct {
	mount      api.Mount
	token      []byte
	httpClient *http.Client
	logger     zerolog.Logger
}

// Ensure Client implements kv.Store.
var _ kv.Store = (*Client)(nil)

// Address returns the resolved server address.
func (c *Client) Address() string {
	return c.mount.Address
}

// Mount returns the resolved engine mount path.
func (c *Client) Mount() string {
	return c.mount.Path
}

// GetSecret reads the current version of the secret at path.
func (c *Client) GetSecret(ctx context.Context, path kv.SecretPath) (kv.SecretData, error) {
	return c.GetSecretVersion(ctx, path, 0)
}

// GetSecretVersion reads an explicit version of the secret at path.
// Version 0 reads the current version.
func (c *Client) GetSecretVersion(ctx context.Context, path kv.SecretPath, version kv.Version) (kv.SecretData, error) {
	const op = "get"
	url := c.mount.URL(api.SegmentData, path, api.ReadQuery(version))
	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	data, err := api.DecodeSecret(status, body)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	return data, nil
}

// PutSecret writes a new version of the secret at path, subject to the
// CheckAndSet rule, and returns the version number the server assigned.
func (c *Client) PutSecret(ctx context.Context, path kv.SecretPath, data kv.SecretData, cas kv.CheckAndSet) (kv.Version, error) {
	const op = "put"
	url := c.mount.URL(api.SegmentData, path, nil)
	status, body, err := c.do(ctx, http.MethodPost, url, api.WriteBody(data, cas))
	if err != nil {
		return 0, kv.NewOpError(op, path, err)
	}
	version, err := api.DecodeWrite(status, body)
	if err != nil {
		return 0, kv.NewOpError(op, path, err)
	}
	return version, nil
}

// DeleteSecret soft-deletes the current version of the secret at path. The
// version can be restored with UndeleteSecretVersions.
func (c *Client) DeleteSecret(ctx context.Context, path kv.SecretPath) error {
	const op = "delete"
	url := c.mount.URL(api.SegmentData, path, nil)
	return c.effect(ctx, op, path, http.MethodDelete, url, nil)
}

// DeleteSecretVersions soft-deletes the given versions of the secret at path.
func (c *Client) DeleteSecretVersions(ctx context.Context, path kv.SecretPath, versions kv.Versions) error {
	const op = "delete versions"
	url := c.mount.URL(api.SegmentDelete, path, nil)
	return c.effect(ctx, op, path, http.MethodPost, url, api.VersionsBody(versions))
}

// UndeleteSecretVersions restores soft-deleted versions of the secret at path.
func (c *Client) UndeleteSecretVersions(ctx context.Context, path kv.SecretPath, versions kv.Versions) error {
	const op = "undelete versions"
	url := c.mount.URL(api.SegmentUndelete, path, nil)
	return c.effect(ctx, op, path, http.MethodPost, url, api.VersionsBody(versions))
}

// DestroySecret permanently removes the secret at path: all versions and all
// metadata. This is irreversible.
func (c *Client) DestroySecret(ctx context.Context, path kv.SecretPath) error {
	const op = "destroy"
	url := c.mount.URL(api.SegmentMetadata, path, nil)
	return c.effect(ctx, op, path, http.MethodDelete, url, nil)
}

// DestroySecretVersions permanently removes the given versions of the secret
// at path. The server's destroy response carries no structured fields worth
// extracting, so the raw decoded payload is returned as-is.
func (c *Client) DestroySecretVersions(ctx context.Context, path kv.SecretPath, versions kv.Versions) (map[string]any, error) {
	const op = "destroy versions"
	url := c.mount.URL(api.SegmentDestroy, path, nil)
	status, body, err := c.do(ctx, http.MethodPost, url, api.VersionsBody(versions))
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	raw, err := api.DecodeRaw(status, body)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	return raw, nil
}

// ListSecrets lists the keys directly under path. Keys ending in "/" mark
// nested path segments.
func (c *Client) ListSecrets(ctx context.Context, path kv.SecretPath) ([]kv.Key, error) {
	const op = "list"
	url := c.mount.URL(api.SegmentMetadata, path, api.ListQuery())
	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	keys, err := api.DecodeKeys(status, body)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	return keys, nil
}

// ReadSecretMetadata reads the version history of the secret at path. The
// result is rebuilt from the server on every call, never cached.
func (c *Client) ReadSecretMetadata(ctx context.Context, path kv.SecretPath) (*kv.SecretMetadata, error) {
	const op = "read metadata"
	url := c.mount.URL(api.SegmentMetadata, path, nil)
	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	meta, err := api.DecodeMetadata(status, body)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	return meta, nil
}

// CurrentSecretVersion returns the current version number of the secret at
// path, as tracked by the engine's metadata.
func (c *Client) CurrentSecretVersion(ctx context.Context, path kv.SecretPath) (kv.Version, error) {
	meta, err := c.ReadSecretMetadata(ctx, path)
	if err != nil {
		return 0, err
	}
	return meta.CurrentVersion, nil
}

// EngineConfig configures the mounted engine (maximum retained versions and
// whether writes must carry a cas option). The raw decoded response is
// returned on success.
func (c *Client) EngineConfig(ctx context.Context, cfg kv.EngineConfig) (map[string]any, error) {
	const op = "engine config"
	url := c.mount.URL(api.SegmentConfig, "", nil)
	status, body, err := c.do(ctx, http.MethodPost, url, cfg)
	if err != nil {
		return nil, kv.NewOpError(op, "", err)
	}
	raw, err := api.DecodeRaw(status, body)
	if err != nil {
		return nil, kv.NewOpError(op, "", err)
	}
	return raw, nil
}

// SecretConfig configures one secret's metadata with the same settings the
// engine-wide config accepts. The raw decoded response is returned on
// success.
func (c *Client) SecretConfig(ctx context.Context, path kv.SecretPath, cfg kv.EngineConfig) (map[string]any, error) {
	const op = "secret config"
	url := c.mount.URL(api.SegmentMetadata, path, nil)
	status, body, err := c.do(ctx, http.MethodPost, url, cfg)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	raw, err := api.DecodeRaw(status, body)
	if err != nil {
		return nil, kv.NewOpError(op, path, err)
	}
	return raw, nil
}

// effect runs an effect-only operation: nil on success, an error otherwise.
func (c *Client) effect(ctx context.Context, op string, path kv.SecretPath, method, url string, body any) error {
	status, respBody, err := c.do(ctx, method, url, body)
	if err != nil {
		return kv.NewOpError(op, path, err)
	}
	if err := api.DecodeEmpty(status, respBody); err != nil {
		return kv.NewOpError(op, path, err)
	}
	return nil
}

// do performs one HTTP round trip and returns the status and body. The
// returned error covers request construction and transport failures only;
// status handling belongs to the decoders.
func (c *Client) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	req, err := api.NewRequest(ctx, method, url, string(c.token), body)
	if err != nil {
		return 0, nil, err
	}

	c.logger.Debug().Str("method", method).Str("url", url).Msg("vault request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().Str("method", method).Str("url", url).Int("status", resp.StatusCode).Msg("vault response")

	return resp.StatusCode, respBody, nil
}
