package main

import (
	"time"

	"github.com/fwojciec/recipefeed"
)

// Presets returns the built-in source configurations.
func Presets() []recipefeed.SourceConfig {
	return []recipefeed.SourceConfig{
		{
			Name: "lidia-bastianich",
			ListingURLs: []string{
				"https://lidiasitaly.com/recipes-categories/pastas-polenta-risottos/",
				"https://lidiasitaly.com/recipes-categories/main-courses/",
				"https://lidiasitaly.com/recipes-categories/chicken-turkey/",
				"https://lidiasitaly.com/recipes-categories/soups/",
				"https://lidiasitaly.com/recipes-categories/sides-vegetable/",
				"https://lidiasitaly.com/recipes-categories/salads/",
			},
			ItemPattern: recipefeed.URLPattern{
				Include:       []string{"/recipes/"},
				Exclude:       []string{"/recipes-categories/"},
				Host:          "lidiasitaly.com",
				TrailingSlash: true,
				MinSegments:   2,
			},
			Extractor:        recipefeed.ExtractorHeuristic,
			MaxPages:         1,
			PerListingLimit:  10,
			TargetCount:      30,
			SuccessThreshold: 80,
			MinIngredients:   3,
			Author:           "Lidia Bastianich",
			Cuisine:          "Italian",
			Tags:             []string{"Italian", "Lidia Bastianich"},
			RateLimit:        2 * time.Second,
		},
		{
			Name:             "serious-eats-top50",
			SeedFile:         "scripts/serious-eats-top50-urls.json",
			Extractor:        recipefeed.ExtractorStructured,
			SuccessThreshold: 90,
			RequireImages:    true,
			RateLimit:        2 * time.Second,
		},
		{
			Name:      "food-and-wine-chef",
			SeedFile:  "scripts/nancy-silverton-urls.json",
			Extractor: recipefeed.ExtractorStructured,
			ItemPattern: recipefeed.URLPattern{
				Include: []string{"/recipes/"},
				Exclude: []string{"/gallery/", "/collection/"},
				Host:    "foodandwine.com",
			},
			SuccessThreshold: 80,
			RateLimit:        2 * time.Second,
		},
	}
}
