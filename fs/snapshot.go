// Package fs provides file-based storage for run snapshots and seed files.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/recipefeed"
)

// Ensure SnapshotStore implements recipefeed.SnapshotStore at compile time.
var _ recipefeed.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore writes a source's raw and canonical snapshots as indented
// JSON under <baseDir>/<source>/. Each write goes to a temporary file that
// is renamed into place, so a snapshot is either complete or absent.
type SnapshotStore struct {
	baseDir string
	source  string
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(baseDir, source string) *SnapshotStore {
	return &SnapshotStore{baseDir: baseDir, source: source}
}

// RawPath is the location of the raw snapshot.
func (s *SnapshotStore) RawPath() string {
	return filepath.Join(s.baseDir, s.source, s.source+"-raw.json")
}

// CanonicalPath is the location of the canonical snapshot.
func (s *SnapshotStore) CanonicalPath() string {
	return filepath.Join(s.baseDir, s.source, s.source+"-transformed.json")
}

func (s *SnapshotStore) WriteRaw(ctx context.Context, records []*recipefeed.RawRecord) error {
	if records == nil {
		records = []*recipefeed.RawRecord{}
	}
	return s.write(ctx, s.RawPath(), records)
}

func (s *SnapshotStore) WriteCanonical(ctx context.Context, records []*recipefeed.CanonicalRecord) error {
	if records == nil {
		records = []*recipefeed.CanonicalRecord{}
	}
	return s.write(ctx, s.CanonicalPath(), records)
}

func (s *SnapshotStore) write(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.source == "" || s.source != filepath.Base(s.source) || strings.HasPrefix(s.source, ".") {
		return recipefeed.Errorf(recipefeed.EINVALID, "invalid source name %q: path traversal", s.source)
	}

	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// encodeJSON renders v as two-space indented JSON without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
