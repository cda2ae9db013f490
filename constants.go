package vaultkv

import "time"

// DefaultMount is the engine mount path used when Config.Mount is empty.
// "secret" is where a stock Vault server mounts its KV v2 engine.
const DefaultMount = "secret"

// Environment variables consulted by the default configuration discovery.
const (
	// EnvVaultAddr provides the server address when Config.Address is empty.
	EnvVaultAddr = "VAULT_ADDR"

	// EnvHome locates the home directory for the token file lookup.
	EnvHome = "HOME"
)

// TokenFileName is the file under the home directory that holds the bearer
// token when Config.Token is empty. The vault CLI writes the same file on
// login.
const TokenFileName = ".vault-token"

// DefaultTimeout bounds each request when no custom HTTP client is supplied.
const DefaultTimeout = 30 * time.Second
