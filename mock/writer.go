package mock

import (
	"context"

	"github.com/fwojciec/recipefeed"
)

var _ recipefeed.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is a mock implementation of recipefeed.SnapshotStore.
type SnapshotStore struct {
	WriteRawFn       func(ctx context.Context, records []*recipefeed.RawRecord) error
	WriteCanonicalFn func(ctx context.Context, records []*recipefeed.CanonicalRecord) error
}

func (s *SnapshotStore) WriteRaw(ctx context.Context, records []*recipefeed.RawRecord) error {
	return s.WriteRawFn(ctx, records)
}

func (s *SnapshotStore) WriteCanonical(ctx context.Context, records []*recipefeed.CanonicalRecord) error {
	return s.WriteCanonicalFn(ctx, records)
}

var _ recipefeed.SeedLoader = (*SeedLoader)(nil)

// SeedLoader is a mock implementation of recipefeed.SeedLoader.
type SeedLoader struct {
	LoadSeedsFn func(ctx context.Context, path string) ([]recipefeed.Seed, error)
}

func (l *SeedLoader) LoadSeeds(ctx context.Context, path string) ([]recipefeed.Seed, error) {
	return l.LoadSeedsFn(ctx, path)
}
