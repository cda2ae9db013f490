package vaultkv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentplexus/vaultkv/kv"
)

// Resolve reads the secret a textual reference points at and returns a
// single string value. The reference format is path[@vN][#field]:
//
//	client.Resolve(ctx, "app/db#password")
//	client.Resolve(ctx, "app/db@v2#password")
//
// With a field, the field's value is returned; kv.ErrFieldNotFound when the
// payload has no such key. Without a field, the whole payload is returned as
// a JSON object.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	parsed, err := kv.ParseRef(ref)
	if err != nil {
		return "", err
	}

	data, err := c.GetSecretVersion(ctx, parsed.Path, parsed.Version)
	if err != nil {
		return "", err
	}

	if parsed.Field == "" {
		encoded, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("encode secret data: %w", err)
		}
		return string(encoded), nil
	}

	value, ok := data[parsed.Field]
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", kv.ErrFieldNotFound, parsed.Field, parsed.Path)
	}
	return value, nil
}

// ResolveAll resolves multiple references and returns a map of reference to
// value. The first failure aborts the whole batch.
func (c *Client) ResolveAll(ctx context.Context, refs []string) (map[string]string, error) {
	results := make(map[string]string, len(refs))
	for _, ref := range refs {
		value, err := c.Resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ref, err)
		}
		results[ref] = value
	}
	return results, nil
}
