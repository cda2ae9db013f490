package vaultkv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentplexus/vaultkv"
	"github.com/agentplexus/vaultkv/internal/vaulttest"
	"github.com/agentplexus/vaultkv/kv"
)

const testToken = "test-token"

func newTestClient(t *testing.T) (*vaultkv.Client, *vaulttest.Server) {
	t.Helper()

	server := vaulttest.New(testToken, "secret")
	t.Cleanup(server.Close)

	client, err := vaultkv.NewClient(vaultkv.Config{
		Address: server.URL(),
		Token:   testToken,
	})
	require.NoError(t, err)
	return client, server
}

func TestSecretLifecycle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	path := kv.SecretPath("app/db")

	// First write must create version 1.
	version, err := client.PutSecret(ctx, path, kv.SecretData{"my": "password"}, kv.CreateOnly())
	require.NoError(t, err)
	assert.Equal(t, kv.Version(1), version)

	// Rotate against the known current version.
	version, err = client.PutSecret(ctx, path, kv.SecretData{"my": "rotated"}, kv.CurrentVersion(1))
	require.NoError(t, err)
	assert.Equal(t, kv.Version(2), version)

	// Current read sees the rotation, a pinned read sees history.
	data, err := client.GetSecret(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, kv.SecretData{"my": "rotated"}, data)

	data, err = client.GetSecretVersion(ctx, path, 1)
	require.NoError(t, err)
	assert.Equal(t, kv.SecretData{"my": "password"}, data)

	current, err := client.CurrentSecretVersion(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, kv.Version(2), current)

	// Soft delete hides the current version until undeleted.
	require.NoError(t, client.DeleteSecret(ctx, path))

	_, err = client.GetSecret(ctx, path)
	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())

	require.NoError(t, client.UndeleteSecretVersions(ctx, path, kv.Versions{2}))

	data, err = client.GetSecret(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, kv.SecretData{"my": "rotated"}, data)

	// Destroying a version is permanent: undelete cannot bring it back.
	_, err = client.DestroySecretVersions(ctx, path, kv.Versions{1})
	require.NoError(t, err)

	require.NoError(t, client.UndeleteSecretVersions(ctx, path, kv.Versions{1}))
	_, err = client.GetSecretVersion(ctx, path, 1)
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())

	meta, err := client.ReadSecretMetadata(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, kv.Version(2), meta.CurrentVersion)
	assert.True(t, meta.Versions[1].Destroyed)
	assert.False(t, meta.Versions[2].Destroyed)

	// Full destroy removes the secret and its history.
	require.NoError(t, client.DestroySecret(ctx, path))

	_, err = client.ReadSecretMetadata(ctx, path)
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
}

func TestPutSecretCreateOnlyConflict(t *testing.T) {
	client, server := newTestClient(t)
	server.Seed("app/db", map[string]string{"my": "password"})

	_, err := client.PutSecret(context.Background(), "app/db",
		kv.SecretData{"my": "other"}, kv.CreateOnly())

	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "check-and-set")

	var opErr *kv.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "put", opErr.Op)
}

func TestPutSecretStaleVersionConflict(t *testing.T) {
	client, server := newTestClient(t)
	server.Seed("app/db", map[string]string{"my": "password"})
	server.Seed("app/db", map[string]string{"my": "rotated"})

	_, err := client.PutSecret(context.Background(), "app/db",
		kv.SecretData{"my": "stale"}, kv.CurrentVersion(1))

	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "did not match the current version")
}

func TestDeleteSecretVersions(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()
	server.Seed("app/db", map[string]string{"my": "v1"})
	server.Seed("app/db", map[string]string{"my": "v2"})

	require.NoError(t, client.DeleteSecretVersions(ctx, "app/db", kv.Versions{1}))

	// Current version untouched, version 1 hidden.
	data, err := client.GetSecret(ctx, "app/db")
	require.NoError(t, err)
	assert.Equal(t, kv.SecretData{"my": "v2"}, data)

	_, err = client.GetSecretVersion(ctx, "app/db", 1)
	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
}

func TestListSecrets(t *testing.T) {
	client, server := newTestClient(t)
	server.Seed("app/db", map[string]string{"a": "1"})
	server.Seed("app/cache", map[string]string{"a": "1"})
	server.Seed("top", map[string]string{"a": "1"})

	keys, err := client.ListSecrets(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []kv.Key{"app/", "top"}, keys)
	assert.True(t, keys[0].IsFolder())

	keys, err = client.ListSecrets(context.Background(), "app")
	require.NoError(t, err)
	assert.Equal(t, []kv.Key{"cache", "db"}, keys)
}

func TestListSecretsEmpty(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.ListSecrets(context.Background(), "nothing/here")
	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
}

func TestEngineConfigCASRequired(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.EngineConfig(ctx, kv.EngineConfig{CASRequired: true})
	require.NoError(t, err)

	// Writes without a cas option are now rejected.
	_, err = client.PutSecret(ctx, "app/db", kv.SecretData{"my": "password"}, kv.WriteAllowed())
	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "check-and-set parameter required")

	_, err = client.PutSecret(ctx, "app/db", kv.SecretData{"my": "password"}, kv.CreateOnly())
	require.NoError(t, err)
}

func TestEngineConfigMaxVersions(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	_, err := client.EngineConfig(ctx, kv.EngineConfig{MaxVersions: 2})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = client.PutSecret(ctx, "app/db", kv.SecretData{"my": "password"}, kv.WriteAllowed())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, server.VersionCount("app/db"))
}

func TestSecretConfig(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.SecretConfig(ctx, "app/db", kv.EngineConfig{CASRequired: true})
	require.NoError(t, err)

	_, err = client.PutSecret(ctx, "app/db", kv.SecretData{"my": "password"}, kv.WriteAllowed())
	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "check-and-set parameter required")

	// Another secret on the same mount is unaffected.
	_, err = client.PutSecret(ctx, "app/other", kv.SecretData{"my": "password"}, kv.WriteAllowed())
	require.NoError(t, err)
}

func TestPermissionDenied(t *testing.T) {
	server := vaulttest.New("real-token", "secret")
	defer server.Close()
	server.Seed("app/db", map[string]string{"my": "password"})

	client, err := vaultkv.NewClient(vaultkv.Config{
		Address: server.URL(),
		Token:   "wrong-token",
	})
	require.NoError(t, err)

	ctx := context.Background()
	ops := map[string]func() error{
		"get": func() error {
			_, err := client.GetSecret(ctx, "app/db")
			return err
		},
		"put": func() error {
			_, err := client.PutSecret(ctx, "app/db", kv.SecretData{"a": "1"}, kv.WriteAllowed())
			return err
		},
		"delete": func() error {
			return client.DeleteSecret(ctx, "app/db")
		},
		"undelete versions": func() error {
			return client.UndeleteSecretVersions(ctx, "app/db", kv.Versions{1})
		},
		"destroy versions": func() error {
			_, err := client.DestroySecretVersions(ctx, "app/db", kv.Versions{1})
			return err
		},
		"list": func() error {
			_, err := client.ListSecrets(ctx, "")
			return err
		},
		"read metadata": func() error {
			_, err := client.ReadSecretMetadata(ctx, "app/db")
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			var apiErr *kv.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.True(t, apiErr.PermissionDenied())
			assert.Contains(t, apiErr.Messages, "permission denied")
		})
	}
}

func TestResolve(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()
	server.Seed("app/db", map[string]string{"user": "admin", "password": "hunter2"})
	server.Seed("app/db", map[string]string{"user": "admin", "password": "rotated"})

	value, err := client.Resolve(ctx, "app/db#password")
	require.NoError(t, err)
	assert.Equal(t, "rotated", value)

	value, err = client.Resolve(ctx, "app/db@v1#password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)

	// No field: the whole payload as JSON.
	value, err = client.Resolve(ctx, "app/db@v1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":"admin","password":"hunter2"}`, value)

	_, err = client.Resolve(ctx, "app/db#missing")
	require.ErrorIs(t, err, kv.ErrFieldNotFound)

	_, err = client.Resolve(ctx, "app/db@latest#password")
	require.ErrorIs(t, err, kv.ErrInvalidRef)
}

func TestResolveAll(t *testing.T) {
	client, server := newTestClient(t)
	server.Seed("app/db", map[string]string{"user": "admin", "password": "hunter2"})

	values, err := client.ResolveAll(context.Background(), []string{
		"app/db#user",
		"app/db#password",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"app/db#user":     "admin",
		"app/db#password": "hunter2",
	}, values)

	_, err = client.ResolveAll(context.Background(), []string{"app/db#user", "app/missing#x"})
	require.Error(t, err)
}

func TestTransportErrorWrapped(t *testing.T) {
	client, err := vaultkv.NewClient(vaultkv.Config{
		Address: "http://127.0.0.1:1",
		Token:   "t",
	})
	require.NoError(t, err)

	_, err = client.GetSecret(context.Background(), "app/db")

	var opErr *kv.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "get", opErr.Op)
	assert.Equal(t, kv.SecretPath("app/db"), opErr.Path)

	var apiErr *kv.APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not service errors")
}
