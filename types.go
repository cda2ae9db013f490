package vaultkv

import "github.com/agentplexus/vaultkv/kv"

// Re-export types from the kv package for convenience.
// Users can import just "vaultkv" instead of "vaultkv/kv".

// SecretPath identifies a secret inside the mounted engine.
type SecretPath = kv.SecretPath

// Version identifies one revision of a secret; zero means current.
type Version = kv.Version

// Versions is an ordered set of secret versions.
type Versions = kv.Versions

// SecretData is the secret payload.
type SecretData = kv.SecretData

// SecretMetadata is the version history of a secret.
type SecretMetadata = kv.SecretMetadata

// VersionMetadata describes one version of a secret.
type VersionMetadata = kv.VersionMetadata

// CheckAndSet selects the optimistic-concurrency behavior of a write.
type CheckAndSet = kv.CheckAndSet

// EngineConfig is the engine/secret configuration body.
type EngineConfig = kv.EngineConfig

// Key is one entry returned by a listing.
type Key = kv.Key

// Ref is a textual secret reference of the form path[@vN][#field].
type Ref = kv.Ref

// Store is the operation set a Client implements.
type Store = kv.Store

// Pair is one ordered key/value entry of a secret payload.
type Pair = kv.Pair

// WriteAllowed performs no check-and-set on a write.
func WriteAllowed() CheckAndSet { return kv.WriteAllowed() }

// CreateOnly allows a write only if no version exists yet.
func CreateOnly() CheckAndSet { return kv.CreateOnly() }

// CurrentVersion allows a write only if the latest version equals n.
func CurrentVersion(n Version) CheckAndSet { return kv.CurrentVersion(n) }

// ToSecretData builds a SecretData mapping from an ordered pair list.
var ToSecretData = kv.ToSecretData

// ToVersions wraps a plain integer list into Versions.
var ToVersions = kv.ToVersions

// ParseRef parses a textual secret reference.
var ParseRef = kv.ParseRef
