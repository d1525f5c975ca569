package recipefeed

import "context"

// SnapshotStore persists the output of one ingestion run. Each snapshot is
// written once, at the end of its stage, and replaces any earlier file.
type SnapshotStore interface {
	// WriteRaw persists every extracted record.
	WriteRaw(ctx context.Context, records []*RawRecord) error

	// WriteCanonical persists every normalized record, valid or not.
	WriteCanonical(ctx context.Context, records []*CanonicalRecord) error
}

// SeedLoader reads a pre-built list of item URLs with per-item metadata.
type SeedLoader interface {
	LoadSeeds(ctx context.Context, path string) ([]Seed, error)
}

// URLSource discovers item URLs outside of listing pages, e.g. a sitemap.
type URLSource interface {
	DiscoverURLs(ctx context.Context, baseURL string, pattern *URLPattern) ([]string, error)
}
