// Package config loads configuration for the vaultkv command line tool.
//
// Settings are merged from three places, strongest first: command line
// flags, environment variables, and an optional ~/.vaultkv.yaml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-user configuration file, relative to the home
// directory.
const FileName = ".vaultkv.yaml"

// File is the on-disk configuration shape.
type File struct {
	// Address is the Vault server address.
	Address string `yaml:"address"`

	// Mount is the KV v2 engine mount path.
	Mount string `yaml:"mount"`

	// SkipVerify disables TLS certificate validation.
	SkipVerify bool `yaml:"skip_verify"`
}

// Path returns the location of the per-user configuration file. The second
// return is false when the home directory cannot be determined.
func Path() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, FileName), true
}

// Load reads the per-user configuration file. A missing file is not an
// error; the zero value is returned.
func Load() (File, error) {
	path, ok := Path()
	if !ok {
		return File{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a configuration file from an explicit path. A missing file
// yields the zero value.
func LoadFrom(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}

// Merge overlays non-zero values of other on top of f and returns the
// result. Used to apply flag and environment overrides in order.
func (f File) Merge(other File) File {
	if other.Address != "" {
		f.Address = other.Address
	}
	if other.Mount != "" {
		f.Mount = other.Mount
	}
	if other.SkipVerify {
		f.SkipVerify = true
	}
	return f
}
