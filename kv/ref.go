package kv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Ref parsing errors.
var (
	// ErrEmptyRef is returned when a secret reference has no path.
	ErrEmptyRef = errors.New("empty secret reference")

	// ErrInvalidRef is returned when a secret reference is malformed.
	ErrInvalidRef = errors.New("invalid secret reference")
)

// Ref is a compact reference to a secret, optionally pinned to a version and
// narrowed to a single field:
//
//	app/db             whole current payload
//	app/db#password    one field of the current payload
//	app/db@v3          whole payload at version 3
//	app/db@v3#password one field at version 3
type Ref struct {
	Path    SecretPath
	Version Version
	Field   string
}

// ParseRef parses a reference of the form path[@vN][#field].
func ParseRef(s string) (Ref, error) {
	if s == "" {
		return Ref{}, ErrEmptyRef
	}

	rest := s
	field := ""
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		field = rest[i+1:]
		rest = rest[:i]
		if strings.ContainsRune(field, '#') {
			return Ref{}, fmt.Errorf("%w: %q has more than one field separator", ErrInvalidRef, s)
		}
	}

	version := Version(0)
	if i := strings.LastIndexByte(rest, '@'); i >= 0 {
		tag := rest[i+1:]
		rest = rest[:i]
		if !strings.HasPrefix(tag, "v") {
			return Ref{}, fmt.Errorf("%w: version in %q must look like @v3", ErrInvalidRef, s)
		}
		n, err := strconv.Atoi(tag[1:])
		if err != nil || n < 0 {
			return Ref{}, fmt.Errorf("%w: version in %q must be a non-negative number", ErrInvalidRef, s)
		}
		version = Version(n)
	}

	if rest == "" {
		return Ref{}, ErrEmptyRef
	}

	return Ref{Path: SecretPath(rest), Version: version, Field: field}, nil
}

// String returns the canonical textual form of the reference.
func (r Ref) String() string {
	var b strings.Builder
	b.WriteString(string(r.Path))
	if r.Version != 0 {
		fmt.Fprintf(&b, "@v%d", r.Version)
	}
	if r.Field != "" {
		b.WriteByte('#')
		b.WriteString(r.Field)
	}
	return b.String()
}
