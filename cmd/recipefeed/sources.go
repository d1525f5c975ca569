package main

import (
	"fmt"
	"text/tabwriter"
)

// Run executes the sources command.
func (c *SourcesCmd) Run(deps *Dependencies) error {
	sources, err := LoadSources(c.Config)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEXTRACTOR\tORIGIN\tTARGET\tTHRESHOLD")
	for _, src := range sources {
		src = src.WithDefaults()
		target := "all"
		if src.TargetCount > 0 {
			target = fmt.Sprint(src.TargetCount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f%%\n", src.Name, src.Extractor, origin(src.ListingURLs, src.SitemapURL, src.SeedFile), target, src.SuccessThreshold)
	}
	return w.Flush()
}

// origin describes where a source's item URLs come from.
func origin(listings []string, sitemap, seedFile string) string {
	switch {
	case seedFile != "":
		return "seed file " + seedFile
	case sitemap != "":
		return "sitemap " + sitemap
	case len(listings) == 1:
		return "listing " + listings[0]
	default:
		return fmt.Sprintf("%d listings", len(listings))
	}
}
