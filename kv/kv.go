// Package kv defines the core types for Vault's KV version 2 secrets engine.
// It has no dependency on the client in the parent package, so other modules
// (fakes, alternative transports) can share these types without pulling in
// the HTTP machinery.
//
// A secret is identified by a SecretPath inside a mounted engine and carries
// one or more numbered versions. Version 0 always means "whatever the engine
// considers current". Writes can be guarded with a CheckAndSet value to get
// optimistic concurrency control:
//
//	client.PutSecret(ctx, "app/db", data, kv.WriteAllowed())    // last write wins
//	client.PutSecret(ctx, "app/db", data, kv.CreateOnly())      // fail if it exists
//	client.PutSecret(ctx, "app/db", data, kv.CurrentVersion(3)) // fail unless latest == 3
package kv

import "context"

// SecretPath identifies a secret inside the mounted engine.
type SecretPath string

// String returns the path as a plain string.
func (p SecretPath) String() string {
	return string(p)
}

// Version identifies one revision of a secret. Zero means the engine's
// current version, as opposed to an explicit request for an older revision.
type Version int

// IsCurrent reports whether the version refers to "whatever is current".
func (v Version) IsCurrent() bool {
	return v == 0
}

// Versions is an ordered set of secret versions used by the bulk
// delete/undelete/destroy operations. The server does not care about order,
// but insertion order is preserved on the client side.
type Versions []Version

// SecretData is the secret payload: a flat mapping of string keys to string
// values. The server stores it as an opaque JSON object.
type SecretData map[string]string

// VersionMetadata describes one version of a secret as reported by the
// engine's metadata endpoint. DeletionTime is empty while the version is
// live; CreatedTime is an RFC 3339 timestamp.
type VersionMetadata struct {
	Destroyed    bool   `json:"destroyed"`
	DeletionTime string `json:"deletion_time"`
	CreatedTime  string `json:"created_time"`
}

// SecretMetadata is the version history of a secret. It is rebuilt from the
// server on every metadata read and never cached.
type SecretMetadata struct {
	CurrentVersion Version
	OldestVersion  Version
	Versions       map[Version]VersionMetadata
}

// CheckAndSet selects the optimistic-concurrency behavior of a write.
// Exactly one of the three variants applies; construct values with
// WriteAllowed, CreateOnly, or CurrentVersion.
type CheckAndSet struct {
	mode    casMode
	version Version
}

type casMode int

const (
	casNone casMode = iota
	casCreateOnly
	casVersion
)

// WriteAllowed performs no check-and-set; the write always creates a new
// version.
func WriteAllowed() CheckAndSet {
	return CheckAndSet{mode: casNone}
}

// CreateOnly allows the write only if no version of the secret exists yet.
func CreateOnly() CheckAndSet {
	return CheckAndSet{mode: casCreateOnly}
}

// CurrentVersion allows the write only if the latest existing version
// equals n.
func CurrentVersion(n Version) CheckAndSet {
	return CheckAndSet{mode: casVersion, version: n}
}

// Value returns the cas number to send and whether the cas option should be
// present at all: (0, false) for WriteAllowed, (0, true) for CreateOnly,
// (n, true) for CurrentVersion(n).
func (c CheckAndSet) Value() (Version, bool) {
	switch c.mode {
	case casCreateOnly:
		return 0, true
	case casVersion:
		return c.version, true
	default:
		return 0, false
	}
}

// EngineConfig is the configuration body accepted by the engine's config and
// per-secret metadata endpoints.
type EngineConfig struct {
	MaxVersions int  `json:"max_versions"`
	CASRequired bool `json:"cas_required"`
}

// Key is one entry returned by a listing. Names ending in "/" are folder
// markers for nested path segments.
type Key string

// IsFolder reports whether the key marks a nested path segment.
func (k Key) IsFolder() bool {
	return len(k) > 0 && k[len(k)-1] == '/'
}

// Store is the set of KV v2 operations exposed by a client. Consumers that
// want to fake out the library in their own tests can depend on this
// interface instead of the concrete client.
type Store interface {
	// GetSecret reads the current version of a secret.
	GetSecret(ctx context.Context, path SecretPath) (SecretData, error)

	// GetSecretVersion reads an explicit version; version 0 reads current.
	GetSecretVersion(ctx context.Context, path SecretPath, version Version) (SecretData, error)

	// PutSecret writes a new version, subject to the CheckAndSet rule,
	// and returns the version number the server assigned.
	PutSecret(ctx context.Context, path SecretPath, data SecretData, cas CheckAndSet) (Version, error)

	// DeleteSecret soft-deletes the current version.
	DeleteSecret(ctx context.Context, path SecretPath) error

	// DeleteSecretVersions soft-deletes specific versions.
	DeleteSecretVersions(ctx context.Context, path SecretPath, versions Versions) error

	// UndeleteSecretVersions restores soft-deleted versions.
	UndeleteSecretVersions(ctx context.Context, path SecretPath, versions Versions) error

	// DestroySecret permanently removes the secret and all its versions.
	DestroySecret(ctx context.Context, path SecretPath) error

	// DestroySecretVersions permanently removes specific versions and
	// returns the server's raw confirmation payload.
	DestroySecretVersions(ctx context.Context, path SecretPath, versions Versions) (map[string]any, error)

	// ListSecrets lists the keys under a path prefix.
	ListSecrets(ctx context.Context, path SecretPath) ([]Key, error)

	// ReadSecretMetadata reads the version history of a secret.
	ReadSecretMetadata(ctx context.Context, path SecretPath) (*SecretMetadata, error)

	// CurrentSecretVersion returns the secret's current version number.
	CurrentSecretVersion(ctx context.Context, path SecretPath) (Version, error)
}
