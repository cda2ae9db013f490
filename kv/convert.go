package kv

import "sort"

// Pair is one ordered key/value entry of a secret payload.
type Pair struct {
	Key   string
	Value string
}

// ToSecretData builds a SecretData mapping from an ordered pair list. When a
// key appears more than once the last occurrence wins.
func ToSecretData(pairs []Pair) SecretData {
	data := make(SecretData, len(pairs))
	for _, p := range pairs {
		data[p.Key] = p.Value
	}
	return data
}

// Pairs returns the payload as a pair list sorted by key. The round trip
// through ToSecretData preserves content, not the original ordering.
func (d SecretData) Pairs() []Pair {
	pairs := make([]Pair, 0, len(d))
	for k, v := range d {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs
}

// ToVersions wraps a plain integer list. No sign or range validation happens
// here; the server validates versions on its side.
func ToVersions(ns []int) Versions {
	versions := make(Versions, len(ns))
	for i, n := range ns {
		versions[i] = Version(n)
	}
	return versions
}

// Ints unwraps the versions back to a plain integer list, order preserved.
func (vs Versions) Ints() []int {
	ns := make([]int, len(vs))
	for i, v := range vs {
		ns[i] = int(v)
	}
	return ns
}
