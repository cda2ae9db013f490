package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agentplexus/vaultkv/kv"
)

func cmdDelete(verbose bool, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vaultkv delete <path> [versions]")
	}

	c, err := newClient(verbose)
	if err != nil {
		return err
	}
	ctx := context.Background()
	path := kv.SecretPath(args[0])

	if len(args) < 2 {
		if err := c.DeleteSecret(ctx, path); err != nil {
			return err
		}
		fmt.Printf("Current version of '%s' deleted\n", path)
		return nil
	}

	versions, err := parseVersions(args[1])
	if err != nil {
		return err
	}
	if err := c.DeleteSecretVersions(ctx, path, versions); err != nil {
		return err
	}
	fmt.Printf("Versions %s of '%s' deleted\n", args[1], path)
	return nil
}

func cmdUndelete(verbose bool, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: vaultkv undelete <path> <versions>")
	}

	versions, err := parseVersions(args[1])
	if err != nil {
		return err
	}

	c, err := newClient(verbose)
	if err != nil {
		return err
	}

	path := kv.SecretPath(args[0])
	if err := c.UndeleteSecretVersions(context.Background(), path, versions); err != nil {
		return err
	}
	fmt.Printf("Versions %s of '%s' restored\n", args[1], path)
	return nil
}

func cmdDestroy(verbose bool, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vaultkv destroy <path> [versions]")
	}

	c, err := newClient(verbose)
	if err != nil {
		return err
	}
	ctx := context.Background()
	path := kv.SecretPath(args[0])

	if len(args) < 2 {
		if err := c.DestroySecret(ctx, path); err != nil {
			return err
		}
		fmt.Printf("Secret '%s' destroyed\n", path)
		return nil
	}

	versions, err := parseVersions(args[1])
	if err != nil {
		return err
	}
	raw, err := c.DestroySecretVersions(ctx, path, versions)
	if err != nil {
		return err
	}
	fmt.Printf("Versions %s of '%s' destroyed\n", args[1], path)
	printRaw(raw)
	return nil
}

func cmdMetadata(verbose bool, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vaultkv metadata <path>")
	}

	c, err := newClient(verbose)
	if err != nil {
		return err
	}

	meta, err := c.ReadSecretMetadata(context.Background(), kv.SecretPath(args[0]))
	if err != nil {
		return err
	}

	fmt.Printf("Current version: %d\n", meta.CurrentVersion)
	fmt.Printf("Oldest version:  %d\n", meta.OldestVersion)

	numbers := make([]int, 0, len(meta.Versions))
	for n := range meta.Versions {
		numbers = append(numbers, int(n))
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		vm := meta.Versions[kv.Version(n)]
		state := "live"
		switch {
		case vm.Destroyed:
			state = "destroyed"
		case vm.DeletionTime != "":
			state = "deleted " + vm.DeletionTime
		}
		fmt.Printf("  v%d  created %s  %s\n", n, vm.CreatedTime, state)
	}
	return nil
}

func cmdCurrent(verbose bool, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vaultkv current <path>")
	}

	c, err := newClient(verbose)
	if err != nil {
		return err
	}

	version, err := c.CurrentSecretVersion(context.Background(), kv.SecretPath(args[0]))
	if err != nil {
		return err
	}
	fmt.Println(version)
	return nil
}

func cmdConfig(verbose bool, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	maxVersions := fs.Int("max-versions", 0, "number of versions to retain")
	casRequired := fs.Bool("cas-required", false, "require check-and-set on writes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	args = fs.Args()

	c, err := newClient(verbose)
	if err != nil {
		return err
	}
	ctx := context.Background()
	cfg := kv.EngineConfig{MaxVersions: *maxVersions, CASRequired: *casRequired}

	var raw map[string]any
	if len(args) >= 1 {
		raw, err = c.SecretConfig(ctx, kv.SecretPath(args[0]), cfg)
	} else {
		raw, err = c.EngineConfig(ctx, cfg)
	}
	if err != nil {
		return err
	}

	fmt.Println("Configuration updated")
	printRaw(raw)
	return nil
}

// parseVersions parses a comma separated version list like "1,2,5".
func parseVersions(s string) (kv.Versions, error) {
	parts := strings.Split(s, ",")
	ns := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid version %q, expected a positive number", part)
		}
		ns = append(ns, n)
	}
	return kv.ToVersions(ns), nil
}
