package zap_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	rfzap "github.com/fwojciec/recipefeed/zap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time                         { return c.t }
func (c fixedClock) NewTicker(d time.Duration) *time.Ticker { return time.NewTicker(d) }

var runTime = time.Date(2025, 3, 1, 12, 30, 5, 0, time.UTC)

func newTestLogger(t *testing.T, cfg rfzap.Config) *rfzap.RunLogger {
	t.Helper()
	l, err := rfzap.New(cfg, zap.WithClock(fixedClock{runTime}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestRunLogger(t *testing.T) {
	t.Parallel()

	t.Run("writes timestamped severity lines to every sink", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		logPath := filepath.Join(dir, "lidia-scraping-log-20250301_123005.txt")
		errPath := filepath.Join(dir, "lidia-errors-20250301_123005.txt")
		var stdout bytes.Buffer
		l := newTestLogger(t, rfzap.Config{Stdout: &stdout, LogPath: logPath, ErrorPath: errPath})

		l.Info("Starting ingestion", "source", "lidia")
		l.Success("Scraped", "recipe", "Minestrone")
		l.Warn("Retrying", "delay", 2*time.Second)
		l.Error("Failed to scrape", "url", "https://lidiasitaly.com/recipes/x/", "error", errors.New("HTTP 404"))
		require.NoError(t, l.Close())

		console := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
		require.Len(t, console, 4)
		assert.True(t, strings.HasPrefix(console[0], "[2025-03-01 12:30:05] INFO Starting ingestion"))
		assert.Contains(t, console[0], `"source": "lidia"`)
		assert.True(t, strings.HasPrefix(console[1], "[2025-03-01 12:30:05] SUCCESS Scraped"))
		assert.True(t, strings.HasPrefix(console[2], "[2025-03-01 12:30:05] WARNING Retrying"))
		assert.Contains(t, console[2], `"delay": "2s"`)
		assert.True(t, strings.HasPrefix(console[3], "[2025-03-01 12:30:05] ERROR Failed to scrape"))
		assert.Contains(t, console[3], `"error": "HTTP 404"`)

		assert.Equal(t, console, readLines(t, logPath))

		errLines := readLines(t, errPath)
		require.Len(t, errLines, 1)
		assert.Equal(t, console[3], errLines[0])
	})

	t.Run("drops debug lines unless verbose", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		newTestLogger(t, rfzap.Config{Stdout: &quiet}).Zap().Debug("fetch")
		newTestLogger(t, rfzap.Config{Stdout: &verbose, Verbose: true}).Zap().Debug("fetch")

		assert.Empty(t, quiet.String())
		assert.Contains(t, verbose.String(), "DEBUG fetch")
	})

	t.Run("appends to an existing run log", func(t *testing.T) {
		t.Parallel()

		logPath := filepath.Join(t.TempDir(), "logs", "run.txt")
		first := newTestLogger(t, rfzap.Config{LogPath: logPath})
		first.Info("first")
		require.NoError(t, first.Close())
		second := newTestLogger(t, rfzap.Config{LogPath: logPath})
		second.Info("second")
		require.NoError(t, second.Close())

		lines := readLines(t, logPath)
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "INFO first")
		assert.Contains(t, lines[1], "INFO second")
	})

	t.Run("fails when the log file cannot be opened", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))

		_, err := rfzap.New(rfzap.Config{LogPath: filepath.Join(blocker, "run.txt")})

		require.Error(t, err)
	})
}

func TestFields(t *testing.T) {
	t.Parallel()

	t.Run("pairs keys with values", func(t *testing.T) {
		t.Parallel()

		fields := rfzap.Fields("url", "https://example.com", "attempt", 2)

		require.Len(t, fields, 2)
		assert.Equal(t, "url", fields[0].Key)
		assert.Equal(t, "attempt", fields[1].Key)
	})

	t.Run("keeps a dangling key", func(t *testing.T) {
		t.Parallel()

		fields := rfzap.Fields("url", "https://example.com", "orphan")

		require.Len(t, fields, 2)
		assert.Equal(t, "!BADKEY", fields[1].Key)
	})
}
