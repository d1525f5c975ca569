package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/recipefeed"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Now         func() time.Time
	NewRenderer func(timeout time.Duration) (recipefeed.Fetcher, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Ingest   IngestCmd   `cmd:"" help:"Ingest recipes from one or more sources"`
	Discover DiscoverCmd `cmd:"" help:"Write a seed file from a paginated chef or category listing"`
	Sources  SourcesCmd  `cmd:"" help:"List configured sources"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Names       []string `arg:"" optional:"" name:"source" help:"Sources to ingest (default: all configured sources)"`
	Config      string   `short:"c" type:"path" help:"Sources YAML file (default: built-in presets)"`
	Out         string   `short:"o" type:"path" default:"data/recipes/incoming" help:"Snapshot output directory"`
	LogDir      string   `type:"path" help:"Directory for run and error logs (default: system temp directory)"`
	Concurrency int      `default:"2" help:"Sources ingested at once"`
	MetricsFile string   `type:"path" help:"Write run metrics to a Prometheus textfile"`
	Verbose     bool     `short:"v" help:"Log every HTTP request"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL       string        `arg:"" help:"Listing URL, e.g. a Food & Wine chef page"`
	Output    string        `arg:"" type:"path" help:"Seed file to write"`
	Source    string        `default:"Food & Wine" help:"Source label stored with each seed"`
	MaxPages  int           `default:"10" help:"Maximum listing pages to walk"`
	Include   []string      `default:"/recipes/" help:"URL substrings marking recipe links"`
	Exclude   []string      `default:"/gallery/,/collection/" help:"URL substrings to skip"`
	RateLimit time.Duration `default:"2s" help:"Minimum interval between requests"`
	Render    bool          `help:"Render listing pages in headless Chrome"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct {
	Config string `short:"c" type:"path" help:"Sources YAML file (default: built-in presets)"`
}
