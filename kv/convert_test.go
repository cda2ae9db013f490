package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretDataPairRoundTrip(t *testing.T) {
	data := SecretData{
		"username": "admin",
		"password": "hunter2",
		"host":     "db.internal",
	}

	assert.Equal(t, data, ToSecretData(data.Pairs()))
}

func TestPairsSortedByKey(t *testing.T) {
	data := SecretData{"b": "2", "a": "1", "c": "3"}

	assert.Equal(t, []Pair{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
		{Key: "c", Value: "3"},
	}, data.Pairs())
}

func TestToSecretDataLastKeyWins(t *testing.T) {
	data := ToSecretData([]Pair{
		{Key: "k", Value: "first"},
		{Key: "k", Value: "second"},
	})

	assert.Equal(t, SecretData{"k": "second"}, data)
}

func TestVersionsRoundTrip(t *testing.T) {
	ns := []int{3, 1, 2, 2}

	versions := ToVersions(ns)
	assert.Equal(t, Versions{3, 1, 2, 2}, versions)
	assert.Equal(t, ns, versions.Ints())
}

func TestVersionsRoundTripEmpty(t *testing.T) {
	assert.Empty(t, ToVersions(nil).Ints())
}
