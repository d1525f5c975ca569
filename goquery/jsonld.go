package goquery

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/crawl"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// Ensure JSONLDScraper implements recipefeed.RecipeScraper at compile time.
var _ recipefeed.RecipeScraper = (*JSONLDScraper)(nil)

// JSONLDScraper reads recipes from the schema.org Recipe object embedded
// in a page as JSON-LD.
type JSONLDScraper struct {
	Fetcher recipefeed.Fetcher

	// Metadata, if set, fills description, author and image when the
	// recipe object lacks them.
	Metadata recipefeed.MetadataReader
}

// NewJSONLDScraper creates a JSONLDScraper.
func NewJSONLDScraper(f recipefeed.Fetcher, meta recipefeed.MetadataReader) *JSONLDScraper {
	return &JSONLDScraper{Fetcher: f, Metadata: meta}
}

// Scrape fetches url and returns its recipe. A non-2xx response is
// returned as a *recipefeed.StatusError; a page without a Recipe object
// returns an EPARSE error.
func (s *JSONLDScraper) Scrape(ctx context.Context, url string) (*recipefeed.ScrapedRecipe, error) {
	body, err := recipefeed.FetchHTML(ctx, s.Fetcher, url)
	if err != nil {
		return nil, err
	}

	recipe, err := ParseRecipeJSONLD(body)
	if err != nil {
		return nil, err
	}
	recipe.ContentHash = crawl.ComputeHash(body)

	if s.Metadata != nil && (recipe.Description == "" || recipe.Author == "" || len(recipe.Images) == 0) {
		if meta, err := s.Metadata.ReadMetadata(body, url); err == nil {
			applyMetadata(recipe, meta)
		}
	}

	return recipe, nil
}

func applyMetadata(r *recipefeed.ScrapedRecipe, meta *recipefeed.PageMetadata) {
	if r.Description == "" {
		r.Description = meta.Description
	}
	if r.Author == "" {
		r.Author = meta.Author
	}
	if len(r.Images) == 0 && meta.Image != "" {
		r.Images = []string{meta.Image}
	}
	if r.Category == "" && len(meta.Categories) > 0 {
		r.Category = strings.Join(meta.Categories, ", ")
	}
}

// ParseRecipeJSONLD finds the first schema.org Recipe in the page's
// JSON-LD scripts, looking inside arrays and @graph containers.
func ParseRecipeJSONLD(body string) (*recipefeed.ScrapedRecipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, recipefeed.Errorf(recipefeed.EPARSE, "failed to parse HTML: %v", err)
	}

	var (
		node  gjson.Result
		found bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if !gjson.Valid(raw) {
			return true
		}
		node, found = findRecipe(gjson.Parse(raw))
		return !found
	})
	if !found {
		return nil, recipefeed.Errorf(recipefeed.EPARSE, "no recipe metadata found")
	}

	r := &recipefeed.ScrapedRecipe{
		Title:        text(get(node, "name")),
		Author:       first(names(get(node, "author"))),
		Description:  text(get(node, "description")),
		PrepTime:     recipefeed.ParseDuration(get(node, "prepTime").String()),
		CookTime:     recipefeed.ParseDuration(get(node, "cookTime").String()),
		TotalTime:    recipefeed.ParseDuration(get(node, "totalTime").String()),
		Yields:       yields(get(node, "recipeYield")),
		Ingredients:  ingredients(node),
		Instructions: instructions(get(node, "recipeInstructions")),
		Images:       imageURLs(get(node, "image")),
		Cuisine:      strings.Join(strs(get(node, "recipeCuisine")), ", "),
		Category:     strings.Join(strs(get(node, "recipeCategory")), ", "),
	}
	if rating := get(node, "aggregateRating"); rating.IsObject() {
		r.Ratings = json.RawMessage(rating.Raw)
	}
	return r, nil
}

// findRecipe returns the first object whose @type includes "Recipe".
func findRecipe(r gjson.Result) (gjson.Result, bool) {
	switch {
	case r.IsArray():
		for _, item := range r.Array() {
			if found, ok := findRecipe(item); ok {
				return found, true
			}
		}
	case r.IsObject():
		if hasType(r, "Recipe") {
			return r, true
		}
		if graph := get(r, "@graph"); graph.Exists() {
			return findRecipe(graph)
		}
	}
	return gjson.Result{}, false
}

func hasType(r gjson.Result, typ string) bool {
	for _, t := range strs(get(r, "@type")) {
		if t == typ {
			return true
		}
	}
	return false
}

// get returns the member key of object r. Keys are matched literally, so
// JSON-LD keywords such as "@type" need no path escaping.
func get(r gjson.Result, key string) gjson.Result {
	var out gjson.Result
	r.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
			return false
		}
		return true
	})
	return out
}

// text returns r as trimmed, entity-decoded text.
func text(r gjson.Result) string {
	if !r.Exists() || r.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(r.String()))
}

// strs returns r as a list of non-empty strings, accepting a single value
// or an array.
func strs(r gjson.Result) []string {
	var out []string
	add := func(v gjson.Result) {
		if s := text(v); s != "" {
			out = append(out, s)
		}
	}
	if r.IsArray() {
		for _, v := range r.Array() {
			add(v)
		}
	} else {
		add(r)
	}
	return out
}

// names returns the names of a Person/Organization value, which may be a
// string, an object or a list of either.
func names(r gjson.Result) []string {
	var out []string
	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		switch {
		case v.IsArray():
			for _, item := range v.Array() {
				walk(item)
			}
		case v.IsObject():
			if n := text(get(v, "name")); n != "" {
				out = append(out, n)
			}
		default:
			if n := text(v); n != "" {
				out = append(out, n)
			}
		}
	}
	walk(r)
	return out
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// yields prefers the most descriptive yield value, e.g. "4 servings" over "4".
func yields(r gjson.Result) string {
	if r.Type == gjson.Number {
		return strconv.FormatFloat(r.Float(), 'f', -1, 64)
	}
	values := strs(r)
	for _, v := range values {
		if strings.ContainsAny(v, " ") {
			return v
		}
	}
	return first(values)
}

func ingredients(node gjson.Result) []string {
	list := strs(get(node, "recipeIngredient"))
	if len(list) == 0 {
		list = strs(get(node, "ingredients"))
	}
	if list == nil {
		list = []string{}
	}
	return list
}

// instructions reads recipeInstructions given as text, a list of strings,
// HowToStep objects or HowToSection objects with nested steps.
func instructions(r gjson.Result) recipefeed.Instructions {
	if r.Type == gjson.String {
		return recipefeed.TextInstructions(text(r))
	}

	var steps []string
	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		switch {
		case v.IsArray():
			for _, item := range v.Array() {
				walk(item)
			}
		case v.IsObject():
			if hasType(v, "HowToSection") {
				walk(get(v, "itemListElement"))
				return
			}
			s := text(get(v, "text"))
			if s == "" {
				s = text(get(v, "name"))
			}
			if s != "" {
				steps = append(steps, s)
			}
		default:
			if s := text(v); s != "" {
				steps = append(steps, s)
			}
		}
	}
	walk(r)

	if len(steps) == 0 {
		return recipefeed.Instructions{}
	}
	return recipefeed.StepInstructions(steps, "\n")
}

// imageURLs reads an image given as a URL, an ImageObject or a list of either.
func imageURLs(r gjson.Result) []string {
	var out []string
	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		switch {
		case v.IsArray():
			for _, item := range v.Array() {
				walk(item)
			}
		case v.IsObject():
			if u := text(get(v, "url")); u != "" {
				out = append(out, u)
			} else if u := text(get(v, "contentUrl")); u != "" {
				out = append(out, u)
			}
		default:
			if u := text(v); u != "" {
				out = append(out, u)
			}
		}
	}
	walk(r)
	return recipefeed.DedupStrings(out)
}
