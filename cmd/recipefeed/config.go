package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/recipefeed"
	"gopkg.in/yaml.v3"
)

// sourcesFile is the layout of a sources YAML file.
type sourcesFile struct {
	Sources []recipefeed.SourceConfig `yaml:"sources"`
}

// LoadSources reads source configurations from a YAML file. An empty path
// returns the built-in presets. Relative seed_file paths are resolved
// against the directory of the YAML file.
func LoadSources(path string) ([]recipefeed.SourceConfig, error) {
	if path == "" {
		return Presets(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, recipefeed.Errorf(recipefeed.ENOTFOUND, "sources file not found: %s", path)
	} else if err != nil {
		return nil, err
	}

	var f sourcesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, recipefeed.Errorf(recipefeed.EINVALID, "invalid sources file %s: %v", path, err)
	}
	if len(f.Sources) == 0 {
		return nil, recipefeed.Errorf(recipefeed.EINVALID, "sources file %s defines no sources", path)
	}

	seen := make(map[string]bool, len(f.Sources))
	for i := range f.Sources {
		src := &f.Sources[i]
		if seen[src.Name] {
			return nil, recipefeed.Errorf(recipefeed.EINVALID, "duplicate source %q in %s", src.Name, path)
		}
		seen[src.Name] = true

		if src.SeedFile != "" && !filepath.IsAbs(src.SeedFile) {
			src.SeedFile = filepath.Join(filepath.Dir(path), src.SeedFile)
		}
	}
	return f.Sources, nil
}

// selectSources returns the sources named in names, in that order, or all
// sources when names is empty.
func selectSources(all []recipefeed.SourceConfig, names []string) ([]recipefeed.SourceConfig, error) {
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]recipefeed.SourceConfig, len(all))
	for _, src := range all {
		byName[src.Name] = src
	}

	selected := make([]recipefeed.SourceConfig, 0, len(names))
	for _, name := range names {
		src, ok := byName[name]
		if !ok {
			return nil, recipefeed.Errorf(recipefeed.ENOTFOUND, "unknown source %q", name)
		}
		selected = append(selected, src)
	}
	return selected, nil
}
