package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/crawl"
	"github.com/fwojciec/recipefeed/fs"
	"github.com/fwojciec/recipefeed/goquery"
	"github.com/fwojciec/recipefeed/htmltomarkdown"
	rfhttp "github.com/fwojciec/recipefeed/http"
	"github.com/fwojciec/recipefeed/prometheus"
	"github.com/fwojciec/recipefeed/trafilatura"
	rfzap "github.com/fwojciec/recipefeed/zap"
	"golang.org/x/time/rate"
)

// logTimeLayout stamps log file names so that repeated runs never collide.
const logTimeLayout = "20060102_150405"

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	all, err := LoadSources(c.Config)
	if err != nil {
		return err
	}
	sources, err := selectSources(all, c.Names)
	if err != nil {
		return err
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	stamp := now().Format(logTimeLayout)

	logDir := c.LogDir
	if logDir == "" {
		logDir = os.TempDir()
	}

	console := rfzap.Locked(deps.Stdout)

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	runs := make([]crawl.SourceRun, 0, len(sources))
	for _, src := range sources {
		src = src.WithDefaults()
		if err := src.Validate(); err != nil {
			return err
		}

		p, cs, err := c.newPipeline(deps, src, console, logDir, stamp)
		closers = append(closers, cs...)
		if err != nil {
			return fmt.Errorf("source %s: %w", src.Name, err)
		}
		runs = append(runs, crawl.SourceRun{Config: src, Pipeline: p})
	}

	summaries, runErr := crawl.RunSources(deps.Ctx, runs, c.Concurrency)

	if c.MetricsFile != "" {
		if err := writeMetrics(c.MetricsFile, summaries); err != nil {
			return errors.Join(runErr, err)
		}
	}

	failed := 0
	fmt.Fprintln(deps.Stdout)
	for i, s := range summaries {
		if s == nil {
			failed++
			fmt.Fprintf(deps.Stdout, "ERROR %s\n", runs[i].Config.Name)
			continue
		}
		verdict := "PASS"
		if !s.Passed {
			verdict = "FAIL"
			failed++
		}
		fmt.Fprintf(deps.Stdout, "%s %s %d/%d (%.1f%%) valid=%d invalid=%d\n",
			verdict, s.Source, s.FetchSuccess, s.Attempted, s.RoundedRate(), s.Valid, s.Invalid)
	}

	if failed > 0 {
		return errors.Join(runErr, fmt.Errorf("%d of %d sources failed", failed, len(runs)))
	}
	return runErr
}

// newPipeline wires the services for one source. The returned closers must
// be closed after the run even when an error is returned.
func (c *IngestCmd) newPipeline(deps *Dependencies, src recipefeed.SourceConfig, console io.Writer, logDir, stamp string) (*crawl.Pipeline, []io.Closer, error) {
	var closers []io.Closer

	logger, err := rfzap.New(rfzap.Config{
		Stdout:    console,
		LogPath:   filepath.Join(logDir, fmt.Sprintf("%s-scraping-log-%s.txt", src.Name, stamp)),
		ErrorPath: filepath.Join(logDir, fmt.Sprintf("%s-errors-%s.txt", src.Name, stamp)),
		Verbose:   c.Verbose,
	})
	if err != nil {
		return nil, closers, err
	}
	closers = append(closers, logger)

	fetcher := rfzap.NewLoggingFetcher(rfhttp.NewFetcher(rfhttp.WithTimeout(src.Timeout)), logger.Zap())
	closers = append(closers, fetcher)

	listingFetcher := recipefeed.Fetcher(fetcher)
	if src.Render {
		renderer, err := deps.NewRenderer(src.Timeout)
		if err != nil {
			return nil, closers, fmt.Errorf("starting browser: %w", err)
		}
		rendered := rfzap.NewLoggingFetcher(renderer, logger.Zap())
		closers = append(closers, rendered)
		listingFetcher = rendered
	}

	var extractor recipefeed.Extractor
	switch src.Extractor {
	case recipefeed.ExtractorHeuristic:
		extractor = goquery.NewHeuristicExtractor(fetcher, htmltomarkdown.NewConverter(), logger, &src)
	default:
		scraper := goquery.NewJSONLDScraper(fetcher, trafilatura.NewMetadataReader())
		extractor = goquery.NewStructuredExtractor(scraper, &src)
	}

	sitemaps := rfhttp.NewSitemapService(fetcher)
	sitemaps.Limiter = rate.NewLimiter(rate.Every(src.RateLimit), 1)

	p := &crawl.Pipeline{
		Fetcher:     listingFetcher,
		Parser:      goquery.NewListingParser(),
		Extractor:   extractor,
		Sitemaps:    rfzap.NewLoggingURLSource(sitemaps, logger.Zap()),
		Seeds:       fs.NewSeedFile(),
		Store:       fs.NewSnapshotStore(c.Out, src.Name),
		RateLimiter: crawl.NewDomainLimiter(src.RateLimit),
		Retry:       crawl.NewRetryPolicy(src.Retry),
		Normalizer:  recipefeed.NewNormalizer(),
		Logger:      logger,
	}
	return p, closers, nil
}

func writeMetrics(path string, summaries []*recipefeed.RunSummary) error {
	m, err := prometheus.NewRunMetrics()
	if err != nil {
		return err
	}
	for _, s := range summaries {
		if s != nil {
			m.Record(s)
		}
	}
	return m.WriteTextfile(path)
}
