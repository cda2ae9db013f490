// Package main provides the vaultkv CLI, a thin front end over the library.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/agentplexus/vaultkv"
	"github.com/agentplexus/vaultkv/internal/config"
)

const version = "0.1.0"

// EnvVaultMount selects the engine mount path, next to the library's
// VAULT_ADDR handling.
const EnvVaultMount = "VAULT_MOUNT"

// EnvSkipVerify disables TLS certificate validation when set to "1" or
// "true".
const EnvSkipVerify = "VAULT_SKIP_VERIFY"

func main() {
	// Local .env files are a development convenience; ignore when absent.
	_ = godotenv.Load()

	args := os.Args[1:]
	verbose := false
	if len(args) > 0 && (args[0] == "-v" || args[0] == "--verbose") {
		verbose = true
		args = args[1:]
	}

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cmd := args[0]
	args = args[1:]

	var err error
	switch cmd {
	case "get":
		err = cmdGet(verbose, args)
	case "put", "set":
		err = cmdPut(verbose, args)
	case "list", "ls":
		err = cmdList(verbose, args)
	case "delete", "rm":
		err = cmdDelete(verbose, args)
	case "undelete":
		err = cmdUndelete(verbose, args)
	case "destroy":
		err = cmdDestroy(verbose, args)
	case "metadata":
		err = cmdMetadata(verbose, args)
	case "current":
		err = cmdCurrent(verbose, args)
	case "config":
		err = cmdConfig(verbose, args)
	case "version":
		fmt.Printf("vaultkv version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// newClient builds a library client from the CLI's configuration sources.
// Precedence: environment variables, then ~/.vaultkv.yaml; the library
// itself falls back to VAULT_ADDR and ~/.vault-token.
func newClient(verbose bool) (*vaultkv.Client, error) {
	fileCfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	skip := os.Getenv(EnvSkipVerify)
	merged := fileCfg.Merge(config.File{
		Address:    os.Getenv(vaultkv.EnvVaultAddr),
		Mount:      os.Getenv(EnvVaultMount),
		SkipVerify: skip == "1" || skip == "true",
	})

	cfg := vaultkv.Config{
		Address:            merged.Address,
		Mount:              merged.Mount,
		Token:              os.Getenv("VAULT_TOKEN"),
		InsecureSkipVerify: merged.SkipVerify,
	}

	if verbose {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
		cfg.Logger = &logger
	}

	return vaultkv.NewClient(cfg)
}

func printUsage() {
	fmt.Println(`vaultkv - HashiCorp Vault KV v2 client

Usage:
  vaultkv [-v] <command> [arguments]

Secret Commands:
  get <ref>                  Read a secret (ref: path[@vN][#field])
  put <path> k=v [k=v ...]   Write a new secret version (k alone prompts)
  list [path]                List keys under a path
  delete <path> [vN,vN]      Soft-delete current or specific versions
  undelete <path> vN[,vN]    Restore soft-deleted versions
  destroy <path> [vN,vN]     Permanently destroy all or specific versions

Metadata Commands:
  metadata <path>            Show the version history of a secret
  current <path>             Show the current version number
  config [path]              Configure the engine or one secret

Write Options (put):
  -create                    Fail if the secret already exists
  -cas <n>                   Fail unless the current version equals n

Config Options (config):
  -max-versions <n>          Number of versions to retain
  -cas-required              Require check-and-set on writes

Other Commands:
  version                    Show version
  help                       Show this help

Configuration:
  VAULT_ADDR, VAULT_TOKEN (or ~/.vault-token), VAULT_MOUNT,
  VAULT_SKIP_VERIFY, and ~/.vaultkv.yaml (address, mount, skip_verify).

Examples:
  vaultkv put app/db password=hunter2
  vaultkv get app/db#password
  vaultkv get app/db@v2
  vaultkv delete app/db 1,2
  vaultkv undelete app/db 2`)
}
