// Package configutil loads json5 configuration files with an optional
// developer-local override layer. For a config named app.json5 the
// override lives next to it as app.local.json5; values it sets win over
// the base file, so checked-in defaults stay untouched.
package configutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localPath derives the override filename: "dir/app.json5" becomes
// "dir/app.local.json5". A name without an extension gets ".local"
// appended.
func localPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// readInto decodes one file into out. A missing file is not an error;
// the boolean reports whether the file existed.
func readInto(path string, out any) (bool, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if len(contents) == 0 {
		// an empty file carries no settings; treat it like a missing one
		return false, nil
	}
	return true, json5.Unmarshal(contents, out)
}

// ReadConfig loads <name> and merges <name>.local on top of it. When
// neither file exists it returns os.ErrNotExist so callers can fall
// back to defaults or keep searching.
func ReadConfig[T any](name string) (T, error) {
	var config T

	foundBase, err := readInto(name, &config)
	if err != nil {
		return config, err
	}

	override := localPath(name)
	var local T
	foundLocal, err := readInto(override, &local)
	if err != nil {
		return config, err
	}
	if foundLocal {
		if err := mergo.Merge(&config, local, mergo.WithOverride); err != nil {
			return config, err
		}
		slog.Info("merging config with local overrides", "local", override)
	}

	if !foundBase && !foundLocal {
		return config, os.ErrNotExist
	}
	return config, nil
}

// ReadRecursively looks for the named config in the working directory
// and then in each parent, stopping at the filesystem root. Running a
// command from anywhere inside the project tree finds the same config.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
