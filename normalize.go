package recipefeed

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Normalizer maps RawRecords to CanonicalRecords.
//
// Apart from the identifier and timestamps, Normalize is a pure function of
// its inputs: normalizing the same RawRecord twice yields the same fields.
type Normalizer struct {
	// NewID mints record identifiers. Defaults to random UUIDs.
	NewID func() string

	// Now returns the creation timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewNormalizer returns a Normalizer using UUIDs and the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		NewID: uuid.NewString,
		Now:   time.Now,
	}
}

// Normalize derives the canonical record for raw under the source config.
func (n *Normalizer) Normalize(raw *RawRecord, src *SourceConfig) *CanonicalRecord {
	newID := n.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	ts := now().UTC()

	fields := raw.Fields
	rec := &CanonicalRecord{
		ID:             newID(),
		UserID:         SystemUserID,
		Name:           raw.Title,
		Ingredients:    nonNil(raw.Ingredients),
		Instructions:   NormalizeInstructions(raw.Instructions),
		Tags:           buildTags(raw, src),
		Images:         []string{},
		IsPublic:       true,
		IsSystemRecipe: true,
		Source:         raw.URL,
		CreatedAt:      ts,
		UpdatedAt:      ts,
		Provenance: Provenance{
			SourceURL:   raw.URL,
			ScrapedAt:   raw.ScrapedAt,
			Metadata:    raw.Metadata,
			ContentHash: raw.ContentHash,
		},
	}
	if src != nil {
		rec.Provenance.SourceName = src.Name
	}

	if fields.Has(FieldDescription) {
		rec.Description = optionalString(raw.Description)
	}
	if fields.Has(FieldPrepTime) {
		rec.PrepTime = raw.PrepTime
	}
	if fields.Has(FieldCookTime) {
		rec.CookTime = raw.CookTime
	}
	if fields.Has(FieldYields) {
		rec.Servings = ParseServings(raw.Yields)
		rec.Provenance.Yields = raw.Yields
	}
	if fields.Has(FieldCuisine) {
		rec.Cuisine = optionalString(raw.Cuisine)
	}
	if fields.Has(FieldImages) {
		rec.Images = DedupStrings(raw.Images)
	}
	if fields.Has(FieldNotes) {
		rec.Provenance.Notes = raw.Notes
	}
	if fields.Has(FieldAuthor) {
		rec.Provenance.Author = raw.Author
	}
	if fields.Has(FieldRatings) {
		rec.Provenance.Ratings = raw.Ratings
	}

	return rec
}

func buildTags(raw *RawRecord, src *SourceConfig) []string {
	var tags []string
	if raw.Fields.Has(FieldCategory) {
		tags = append(tags, strings.Split(raw.Category, ",")...)
	}
	if raw.Fields.Has(FieldCuisine) {
		tags = append(tags, raw.Cuisine)
	}
	tags = append(tags, raw.Metadata.String("category"))
	if src != nil {
		tags = append(tags, src.Tags...)
	}
	return DedupStrings(tags)
}

var digitsRe = regexp.MustCompile(`\d+`)

// ParseServings returns the first integer found in free-form yield text,
// e.g. 6 for "Serves 6 to 8". Returns nil when the text has no digits.
func ParseServings(text string) *int {
	m := digitsRe.FindString(text)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeInstructions renders instructions as plain text. A single blob
// has whitespace runs collapsed; steps are joined with their own separator
// and otherwise left alone.
func NormalizeInstructions(in Instructions) string {
	if in.Stepwise() {
		return in.String()
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(in.Text, " "))
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration converts an ISO 8601 duration such as "PT1H30M" into whole
// minutes. Plain integers are taken as minutes. Returns nil if unparseable.
func ParseDuration(s string) *int {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return nil
	}
	atoi := func(v string) int {
		n, _ := strconv.Atoi(v)
		return n
	}
	minutes := atoi(m[1])*24*60 + atoi(m[2])*60 + atoi(m[3])
	if m[4] != "" {
		secs, _ := strconv.ParseFloat(m[4], 64)
		minutes += int(secs / 60)
	}
	return &minutes
}

// DedupStrings trims values, drops empties and removes repeats while
// preserving first-seen order.
func DedupStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
