package vaultkv

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentplexus/vaultkv/internal/api"
	"github.com/agentplexus/vaultkv/kv"
)

// Defaults holds the connection parameters discovered from the environment.
// Either field may be empty when the environment does not provide it.
type Defaults struct {
	// Address is the server address, normally from VAULT_ADDR.
	Address string

	// HomeDir is the home directory used to locate the token file,
	// normally from HOME.
	HomeDir string
}

// DefaultsProvider supplies default connection parameters. The environment
// is consulted through this interface so tests can substitute a fake.
type DefaultsProvider interface {
	Defaults() Defaults
}

// envDefaults reads defaults from the process environment.
type envDefaults struct{}

// Defaults implements DefaultsProvider.
func (envDefaults) Defaults() Defaults {
	addr, _ := os.LookupEnv(EnvVaultAddr)
	home, _ := os.LookupEnv(EnvHome)
	return Defaults{Address: addr, HomeDir: home}
}

// EnvDefaults returns a DefaultsProvider backed by the process environment.
// It is what NewClient uses when Config.Defaults is nil.
func EnvDefaults() DefaultsProvider {
	return envDefaults{}
}

// StaticDefaults is a DefaultsProvider with fixed values, for tests.
type StaticDefaults Defaults

// Defaults implements DefaultsProvider.
func (s StaticDefaults) Defaults() Defaults {
	return Defaults(s)
}

// Config holds configuration for creating a new Client.
type Config struct {
	// Address is the server base address (e.g. "https://vault.example.com:8200").
	// When empty, the VAULT_ADDR environment variable is used.
	Address string

	// Mount is the KV v2 engine mount path. Defaults to "secret".
	Mount string

	// Token is the bearer credential. When empty, the token is read from
	// <home>/.vault-token.
	Token string

	// InsecureSkipVerify disables TLS certificate validation. Intended for
	// development servers with self-signed certificates only.
	InsecureSkipVerify bool

	// HTTPClient is an optional HTTP client. When nil, a client with
	// DefaultTimeout and TLS session resumption disabled is built.
	HTTPClient *http.Client

	// Logger is an optional structured logger. Requests are logged at
	// debug level; the token is never logged.
	Logger *zerolog.Logger

	// Defaults overrides environment discovery, for tests.
	Defaults DefaultsProvider
}

// NewClient resolves the connection parameters and returns a Client bound to
// one KV v2 engine mount. Resolution failures are returned as values, before
// any network call is attempted.
func NewClient(cfg Config) (*Client, error) {
	provider := cfg.Defaults
	if provider == nil {
		provider = EnvDefaults()
	}
	defaults := provider.Defaults()

	address := cfg.Address
	if address == "" {
		address = defaults.Address
	}
	if address == "" {
		return nil, kv.ErrAddressNotSet
	}

	mount := cfg.Mount
	if mount == "" {
		mount = DefaultMount
	}

	token := cfg.Token
	if token == "" {
		var err error
		token, err = readTokenFile(defaults.HomeDir)
		if err != nil {
			return nil, err
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.InsecureSkipVerify)
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		mount:      api.NewMount(address, mount),
		token:      []byte(token),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// readTokenFile reads the bearer token from <home>/.vault-token.
func readTokenFile(home string) (string, error) {
	if home == "" {
		return "", kv.ErrHomeNotSet
	}

	path := filepath.Join(home, TokenFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w (looked at %s)", kv.ErrTokenNotFound, path)
		}
		return "", fmt.Errorf("read token file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// newHTTPClient builds the shared HTTP client. TLS session resumption is
// switched off so every request context negotiates a fresh session; stale
// sessions have caused spurious handshake failures against Vault behind
// reloading load balancers.
func newHTTPClient(insecureSkipVerify bool) *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify:     insecureSkipVerify,
				SessionTicketsDisabled: true,
				ClientSessionCache:     nil,
			},
		},
	}
}
