package goquery

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/crawl"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultInstructionsContainer selects the element holding the method
// paragraphs on WordPress recipe pages.
const DefaultInstructionsContainer = "div.recipe-text"

// minInstructionParagraph is the length a paragraph must exceed to be kept
// as an instruction step.
const minInstructionParagraph = 20

var (
	servingsRe     = regexp.MustCompile(`(?i)serves`)
	ingredientsRe  = regexp.MustCompile(`(?i)ingredients`)
	instructionsRe = regexp.MustCompile(`(?i)directions|instructions`)
	notesRe        = regexp.MustCompile(`(?i)notes`)
)

// boilerplate marks paragraphs that are sharing widgets or credits.
var boilerplate = []string{"facebook", "twitter", "pinterest", "email", "copyright", "excerpted from", "all rights reserved"}

// Ensure HeuristicExtractor implements recipefeed.Extractor at compile time.
var _ recipefeed.Extractor = (*HeuristicExtractor)(nil)

// HeuristicExtractor extracts recipes from pages without structured data by
// locating headings and reading the elements that follow them.
type HeuristicExtractor struct {
	Fetcher   recipefeed.Fetcher
	Converter recipefeed.TextConverter
	Logger    recipefeed.Logger

	// Author and Cuisine are fixed per source.
	Author  string
	Cuisine string

	// InstructionsContainer selects the element holding instruction
	// paragraphs. Defaults to DefaultInstructionsContainer.
	InstructionsContainer string

	// Now returns the scrape timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewHeuristicExtractor creates a HeuristicExtractor for the given source.
func NewHeuristicExtractor(f recipefeed.Fetcher, conv recipefeed.TextConverter, logger recipefeed.Logger, src *recipefeed.SourceConfig) *HeuristicExtractor {
	return &HeuristicExtractor{
		Fetcher:   f,
		Converter: conv,
		Logger:    logger,
		Author:    src.Author,
		Cuisine:   src.Cuisine,
	}
}

// Fields reports the optional fields the page layout provides.
func (e *HeuristicExtractor) Fields() recipefeed.FieldSet {
	return recipefeed.Fields(
		recipefeed.FieldAuthor,
		recipefeed.FieldDescription,
		recipefeed.FieldYields,
		recipefeed.FieldImages,
		recipefeed.FieldCuisine,
		recipefeed.FieldCategory,
		recipefeed.FieldNotes,
	)
}

// Extract fetches seed.URL and parses the recipe from its HTML.
// A non-2xx response is returned as a *recipefeed.StatusError.
func (e *HeuristicExtractor) Extract(ctx context.Context, seed recipefeed.Seed) (*recipefeed.RawRecord, error) {
	body, err := recipefeed.FetchHTML(ctx, e.Fetcher, seed.URL)
	if err != nil {
		return nil, err
	}
	return e.ExtractHTML(body, seed)
}

// ExtractHTML parses a fetched recipe page. It returns an EPARSE error when
// the page has no title.
func (e *HeuristicExtractor) ExtractHTML(body string, seed recipefeed.Seed) (*recipefeed.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, recipefeed.Errorf(recipefeed.EPARSE, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		if e.Logger != nil {
			e.Logger.Warn("No title found", "url", seed.URL)
		}
		return nil, recipefeed.Errorf(recipefeed.EPARSE, "no title found for %s", seed.URL)
	}

	p := newPageIndex(doc)
	notes := e.notes(p)

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	return &recipefeed.RawRecord{
		URL:          seed.URL,
		ScrapedAt:    now().UTC(),
		Title:        title,
		Author:       e.Author,
		Description:  notes,
		Yields:       p.servings(),
		Ingredients:  p.ingredients(),
		Instructions: recipefeed.StepInstructions(e.instructions(p), "\n\n"),
		Notes:        notes,
		Images:       images(doc, seed.URL),
		Cuisine:      e.Cuisine,
		Category:     seed.Metadata.String("category"),
		Metadata:     seed.Metadata,
		ContentHash:  crawl.ComputeHash(body),
		Fields:       e.Fields(),
	}, nil
}

func (e *HeuristicExtractor) instructions(p *pageIndex) []string {
	heading := p.heading(instructionsRe)
	if heading == nil {
		return nil
	}

	selector := e.InstructionsContainer
	if selector == "" {
		selector = DefaultInstructionsContainer
	}

	var paragraphs *goquery.Selection
	if container := p.next(heading, p.doc.Find(selector)); container != nil {
		paragraphs = goquery.NewDocumentFromNode(container).Find("p")
	} else {
		// No container: use the paragraphs between the heading and the next heading.
		paragraphs = p.until(heading, atom.P)
	}

	var steps []string
	paragraphs.Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len([]rune(text)) <= minInstructionParagraph || isBoilerplate(text) {
			return
		}
		steps = append(steps, text)
	})
	return steps
}

func (e *HeuristicExtractor) notes(p *pageIndex) string {
	heading := p.heading(notesRe)
	if heading == nil {
		return ""
	}
	node := p.next(heading, p.doc.Find("p, div"))
	if node == nil {
		return ""
	}

	// Notes feed Description, so they stay plain text.
	sel := goquery.NewDocumentFromNode(node).Selection
	if e.Converter != nil {
		if outer, err := goquery.OuterHtml(sel); err == nil {
			if text, err := e.Converter.Convert(outer); err == nil {
				return text
			}
		}
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, b := range boilerplate {
		if strings.Contains(lower, b) {
			return true
		}
	}
	return false
}

// images returns recipe photo URLs: img src (or data-src) values under an
// uploads path that are not logos, icons or buttons, resolved and deduped.
func images(doc *goquery.Document, pageURL string) []string {
	var out []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			src = s.AttrOr("data-src", "")
		}
		lower := strings.ToLower(src)
		if src == "" || !strings.Contains(lower, "upload") {
			return
		}
		for _, skip := range []string{"logo", "icon", "button"} {
			if strings.Contains(lower, skip) {
				return
			}
		}
		out = append(out, resolveAgainst(pageURL, src))
	})
	return recipefeed.DedupStrings(out)
}

// pageIndex records the document order of every element so that "the first
// X after heading H" can be answered for any selection.
type pageIndex struct {
	doc   *goquery.Document
	order map[*html.Node]int
}

func newPageIndex(doc *goquery.Document) *pageIndex {
	p := &pageIndex{doc: doc, order: make(map[*html.Node]int)}
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		p.order[s.Get(0)] = i
	})
	return p
}

// heading returns the first h2-h4 heading whose text matches re.
func (p *pageIndex) heading(re *regexp.Regexp) *html.Node {
	var found *html.Node
	p.doc.Find("h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if re.MatchString(s.Text()) {
			found = s.Get(0)
			return false
		}
		return true
	})
	return found
}

// next returns the first node of candidates that follows after in document
// order and is not inside it.
func (p *pageIndex) next(after *html.Node, candidates *goquery.Selection) *html.Node {
	pos := p.order[after]
	for _, n := range candidates.Nodes {
		if p.order[n] > pos && !contains(after, n) {
			return n
		}
	}
	return nil
}

// until selects the elements of type a that follow after up to the next
// heading.
func (p *pageIndex) until(after *html.Node, a atom.Atom) *goquery.Selection {
	var nodes []*html.Node
	for n := after.NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		if isHeading(n) {
			break
		}
		if n.DataAtom == a {
			nodes = append(nodes, n)
		}
	}
	return p.doc.FindNodes(nodes...)
}

func (p *pageIndex) servings() string {
	if h := p.heading(servingsRe); h != nil {
		return strings.TrimSpace(goquery.NewDocumentFromNode(h).Text())
	}
	return ""
}

func (p *pageIndex) ingredients() []string {
	heading := p.heading(ingredientsRe)
	if heading == nil {
		return []string{}
	}
	list := p.next(heading, p.doc.Find("ul, ol"))
	if list == nil {
		return []string{}
	}

	items := []string{}
	goquery.NewDocumentFromNode(list).Find("li").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			items = append(items, text)
		}
	})
	return items
}

func isHeading(n *html.Node) bool {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func contains(parent, n *html.Node) bool {
	for c := n.Parent; c != nil; c = c.Parent {
		if c == parent {
			return true
		}
	}
	return false
}
