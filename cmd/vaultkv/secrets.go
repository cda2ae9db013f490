package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/agentplexus/vaultkv/kv"
)

func cmdGet(verbose bool, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vaultkv get <path[@vN][#field]>")
	}

	c, err := newClient(verbose)
	if err != nil {
		return err
	}
	ctx := context.Background()

	ref, err := kv.ParseRef(args[0])
	if err != nil {
		return err
	}

	if ref.Field != "" {
		value, err := c.Resolve(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	}

	data, err := c.GetSecretVersion(ctx, ref.Path, ref.Version)
	if err != nil {
		return err
	}
	for _, pair := range data.Pairs() {
		fmt.Printf("%s: %s\n", pair.Key, pair.Value)
	}
	return nil
}

func cmdPut(verbose bool, args []string) error {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	create := fs.Bool("create", false, "fail if the secret already exists")
	casVersion := fs.Int("cas", -1, "fail unless the current version equals n")
	if err := fs.Parse(args); err != nil {
		return err
	}
	args = fs.Args()

	if len(args) < 2 {
		return fmt.Errorf("usage: vaultkv put [-create|-cas n] <path> <key=value> [key=value ...]")
	}
	if *create && *casVersion >= 0 {
		return fmt.Errorf("-create and -cas are mutually exclusive")
	}

	path := kv.SecretPath(args[0])
	data := make(kv.SecretData, len(args)-1)
	for _, arg := range args[1:] {
		key, value, found := strings.Cut(arg, "=")
		if key == "" {
			return fmt.Errorf("invalid entry %q, expected key=value", arg)
		}
		if !found {
			// Bare key: prompt for the value without echoing it.
			value, err := promptSecret(fmt.Sprintf("Value for %q: ", key))
			if err != nil {
				return err
			}
			data[key] = value
			continue
		}
		data[key] = value
	}

	cas := kv.WriteAllowed()
	switch {
	case *create:
		cas = kv.CreateOnly()
	case *casVersion >= 0:
		cas = kv.CurrentVersion(kv.Version(*casVersion))
	}

	c, err := newClient(verbose)
	if err != nil {
		return err
	}

	version, err := c.PutSecret(context.Background(), path, data, cas)
	if err != nil {
		return err
	}
	fmt.Printf("Secret '%s' written as version %d\n", path, version)
	return nil
}

func cmdList(verbose bool, args []string) error {
	path := kv.SecretPath("")
	if len(args) >= 1 {
		path = kv.SecretPath(args[0])
	}

	c, err := newClient(verbose)
	if err != nil {
		return err
	}

	keys, err := c.ListSecrets(context.Background(), path)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

// promptSecret reads a value from the terminal without echo, falling back to
// a plain line read when stdin is not a terminal.
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(syscall.Stdin) {
		raw, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read value: %w", err)
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read value: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// printRaw prints a raw server response in a stable order.
func printRaw(raw map[string]any) {
	if len(raw) == 0 {
		return
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %v\n", k, raw[k])
	}
}
