package recipefeed

import (
	"encoding/json"
	"strings"
	"time"
)

// RawRecord is a recipe as extracted from a single source page, before
// normalization. A RawRecord is produced by exactly one Extractor call and
// is not modified afterwards.
type RawRecord struct {
	URL          string          `json:"url"`
	ScrapedAt    time.Time       `json:"scraped_at"`
	Title        string          `json:"title"`
	Author       string          `json:"author,omitempty"`
	Description  string          `json:"description,omitempty"`
	PrepTime     *int            `json:"prep_time,omitempty"`
	CookTime     *int            `json:"cook_time,omitempty"`
	TotalTime    *int            `json:"total_time,omitempty"`
	Yields       string          `json:"yields,omitempty"`
	Ingredients  []string        `json:"ingredients"`
	Instructions Instructions    `json:"instructions"`
	Images       []string        `json:"images"`
	Cuisine      string          `json:"cuisine,omitempty"`
	Category     string          `json:"category,omitempty"`
	Ratings      json.RawMessage `json:"ratings,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Metadata     Metadata        `json:"metadata,omitempty"`
	ContentHash  string          `json:"content_hash,omitempty"`

	// Fields lists what the producing extractor is able to supply.
	Fields FieldSet `json:"-"`
}

// Metadata carries source-specific values such as the chef name or the
// category a URL was discovered under. Values are strings or numbers.
type Metadata map[string]any

// String returns the value for key as a string, or "" if absent.
func (m Metadata) String(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Instructions holds recipe directions either as discrete steps or as a
// single text blob.
type Instructions struct {
	Steps []string
	Text  string
	// Sep joins Steps into text. Defaults to a newline.
	Sep string
}

// StepInstructions returns stepwise instructions joined by sep.
func StepInstructions(steps []string, sep string) Instructions {
	return Instructions{Steps: steps, Sep: sep}
}

// TextInstructions returns instructions held as a single blob.
func TextInstructions(text string) Instructions {
	return Instructions{Text: text}
}

// Stepwise reports whether the instructions arrived as discrete steps.
func (in Instructions) Stepwise() bool {
	return in.Steps != nil
}

// IsZero reports whether no instructions are present.
func (in Instructions) IsZero() bool {
	return len(in.Steps) == 0 && in.Text == ""
}

// String joins steps with the record's separator, or returns the blob.
func (in Instructions) String() string {
	if !in.Stepwise() {
		return in.Text
	}
	sep := in.Sep
	if sep == "" {
		sep = "\n"
	}
	return strings.Join(in.Steps, sep)
}

// MarshalJSON encodes steps as an array and a blob as a string.
func (in Instructions) MarshalJSON() ([]byte, error) {
	if in.Stepwise() {
		return json.Marshal(in.Steps)
	}
	return json.Marshal(in.Text)
}

// UnmarshalJSON accepts either an array of steps or a string.
func (in *Instructions) UnmarshalJSON(data []byte) error {
	var steps []string
	if err := json.Unmarshal(data, &steps); err == nil {
		*in = Instructions{Steps: steps}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return Errorf(EINVALID, "instructions must be a string or a list of strings")
	}
	*in = Instructions{Text: text}
	return nil
}

// CanonicalRecord is a normalized, schema-aligned recipe ready for import.
type CanonicalRecord struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	ChefID         *string    `json:"chef_id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	Ingredients    []string   `json:"ingredients"`
	Instructions   string     `json:"instructions"`
	PrepTime       *int       `json:"prep_time"`
	CookTime       *int       `json:"cook_time"`
	Servings       *int       `json:"servings"`
	Difficulty     *string    `json:"difficulty"`
	Cuisine        *string    `json:"cuisine"`
	Tags           []string   `json:"tags"`
	Images         []string   `json:"images"`
	IsAIGenerated  bool       `json:"is_ai_generated"`
	IsPublic       bool       `json:"is_public"`
	IsSystemRecipe bool       `json:"is_system_recipe"`
	Source         string     `json:"source"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Provenance     Provenance `json:"_metadata"`
	Issues         []string   `json:"_validation_issues,omitempty"`
}

// SystemUserID owns every ingested recipe.
const SystemUserID = "system"

// Provenance retains where a record came from and the free-form source
// fields that were parsed away during normalization.
type Provenance struct {
	SourceName  string          `json:"source_name,omitempty"`
	SourceURL   string          `json:"source_url"`
	ScrapedAt   time.Time       `json:"scraped_at"`
	Yields      string          `json:"servings_text,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Author      string          `json:"scraped_author,omitempty"`
	Ratings     json.RawMessage `json:"scraped_ratings,omitempty"`
	Metadata    Metadata        `json:"metadata,omitempty"`
	ContentHash string          `json:"content_hash,omitempty"`
}

// Valid reports whether no validation issues were recorded.
func (r *CanonicalRecord) Valid() bool {
	return len(r.Issues) == 0
}
