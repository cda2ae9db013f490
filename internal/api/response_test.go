package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentplexus/vaultkv/kv"
)

func TestDecodeSecret(t *testing.T) {
	data, err := DecodeSecret(200, []byte(`{"data":{"data":{"my":"password"}}}`))
	require.NoError(t, err)
	assert.Equal(t, kv.SecretData{"my": "password"}, data)
}

func TestDecodeSecretServiceError(t *testing.T) {
	_, err := DecodeSecret(403, []byte(`{"errors":["permission denied"]}`))

	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "permission denied")
}

func TestDecodeSecretUnparseableErrorBody(t *testing.T) {
	_, err := DecodeSecret(502, []byte(`<html>bad gateway</html>`))

	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 502, apiErr.StatusCode)
	assert.Contains(t, apiErr.RawBody, "bad gateway")
}

func TestDecodeSecretShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing data.data", body: `{"data":{"metadata":{}}}`},
		{name: "missing envelope", body: `{}`},
		{name: "wrong type", body: `{"data":{"data":[1,2]}}`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSecret(200, []byte(tt.body))
			var decodeErr *kv.DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeWrite(t *testing.T) {
	version, err := DecodeWrite(200, []byte(`{"data":{"version":2,"created_time":"2019-05-30T13:22:58Z"}}`))
	require.NoError(t, err)
	assert.Equal(t, kv.Version(2), version)
}

func TestDecodeWriteRejectsBadVersions(t *testing.T) {
	for name, body := range map[string]string{
		"negative":    `{"data":{"version":-1}}`,
		"non integer": `{"data":{"version":1.5}}`,
		"missing":     `{"data":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeWrite(200, []byte(body))
			var decodeErr *kv.DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeKeys(t *testing.T) {
	keys, err := DecodeKeys(200, []byte(`{"data":{"keys":["app","nested/"]}}`))
	require.NoError(t, err)
	assert.Equal(t, []kv.Key{"app", "nested/"}, keys)
	assert.True(t, keys[1].IsFolder())
}

func TestDecodeKeysMissingField(t *testing.T) {
	_, err := DecodeKeys(200, []byte(`{"data":{}}`))
	var decodeErr *kv.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeMetadata(t *testing.T) {
	body := `{"data":{"current_version":2,"oldest_version":1,"versions":{
		"1":{"destroyed":true,"deletion_time":"","created_time":"2019-05-30T13:22:58.416399224Z"},
		"2":{"destroyed":true,"deletion_time":"2019-06-29T15:28:46.145302138Z","created_time":"2019-06-29T15:26:32.733559921Z"}}}}`

	meta, err := DecodeMetadata(200, []byte(body))
	require.NoError(t, err)

	assert.Equal(t, kv.Version(2), meta.CurrentVersion)
	assert.Equal(t, kv.Version(1), meta.OldestVersion)
	require.Len(t, meta.Versions, 2)

	v1 := meta.Versions[1]
	assert.True(t, v1.Destroyed)
	assert.Empty(t, v1.DeletionTime)
	assert.Equal(t, "2019-05-30T13:22:58.416399224Z", v1.CreatedTime)

	v2 := meta.Versions[2]
	assert.Equal(t, "2019-06-29T15:28:46.145302138Z", v2.DeletionTime)
}

func TestDecodeMetadataRejectsBadVersionKeys(t *testing.T) {
	_, err := DecodeMetadata(200, []byte(`{"data":{"current_version":1,"versions":{"one":{}}}}`))
	var decodeErr *kv.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeMetadataRejectsNegativeCurrentVersion(t *testing.T) {
	_, err := DecodeMetadata(200, []byte(`{"data":{"current_version":-2,"versions":{}}}`))
	var decodeErr *kv.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "data.current_version", decodeErr.Field)
}

func TestDecodeEmpty(t *testing.T) {
	assert.NoError(t, DecodeEmpty(204, nil))
	assert.NoError(t, DecodeEmpty(200, []byte(`{}`)))

	err := DecodeEmpty(404, []byte(`{"errors":[]}`))
	var apiErr *kv.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
}

func TestDecodeRaw(t *testing.T) {
	raw, err := DecodeRaw(200, []byte(`{"request_id":"abc","data":null}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", raw["request_id"])

	raw, err = DecodeRaw(204, nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	_, err = DecodeRaw(200, []byte(`not json`))
	var decodeErr *kv.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestServiceErrorJoinsMessages(t *testing.T) {
	err := DecodeEmpty(400, []byte(`{"errors":["first","second"]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.False(t, errors.Is(err, kv.ErrAddressNotSet))
}
