// Package recipefeed ingests recipes from third-party web pages into a
// canonical, validated record format. It discovers recipe URLs from listing
// pages, fetches and extracts each page, normalizes the result and reports
// on the quality of the run.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, zap/, http/).
package recipefeed
