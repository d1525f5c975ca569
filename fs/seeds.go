package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/fwojciec/recipefeed"
)

// Ensure SeedFile implements recipefeed.SeedLoader at compile time.
var _ recipefeed.SeedLoader = (*SeedFile)(nil)

// SeedFile reads and writes seed files: JSON arrays of objects that each
// carry a "url" plus any per-item metadata such as author or category.
type SeedFile struct{}

// NewSeedFile creates a new SeedFile.
func NewSeedFile() *SeedFile {
	return &SeedFile{}
}

// LoadSeeds reads the seed file at path. Keys other than "url" become the
// seed's metadata. A missing file returns ENOTFOUND; malformed content or
// an entry without a url returns EINVALID.
func (s *SeedFile) LoadSeeds(ctx context.Context, path string) ([]recipefeed.Seed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, recipefeed.Errorf(recipefeed.ENOTFOUND, "seed file not found: %s", path)
	} else if err != nil {
		return nil, err
	}

	var entries []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&entries); err != nil {
		return nil, recipefeed.Errorf(recipefeed.EINVALID, "invalid seed file %s: %v", path, err)
	}

	seeds := make([]recipefeed.Seed, 0, len(entries))
	for i, entry := range entries {
		url, _ := entry["url"].(string)
		if url == "" {
			return nil, recipefeed.Errorf(recipefeed.EINVALID, "invalid seed file %s: entry %d has no url", path, i)
		}
		delete(entry, "url")

		seed := recipefeed.Seed{URL: url}
		if len(entry) > 0 {
			seed.Metadata = recipefeed.Metadata(entry)
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

// WriteSeeds writes seeds to path in the format LoadSeeds reads.
func (s *SeedFile) WriteSeeds(ctx context.Context, path string, seeds []recipefeed.Seed) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := make([]map[string]any, 0, len(seeds))
	for _, seed := range seeds {
		entry := make(map[string]any, len(seed.Metadata)+1)
		for k, v := range seed.Metadata {
			entry[k] = v
		}
		entry["url"] = seed.URL
		entries = append(entries, entry)
	}

	data, err := encodeJSON(entries)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}
