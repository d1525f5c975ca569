package recipefeed_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/recipefeed"
	"github.com/stretchr/testify/assert"
)

func validRecord() *recipefeed.CanonicalRecord {
	return &recipefeed.CanonicalRecord{
		Name:         "Lasagna",
		Ingredients:  []string{"pasta", "sauce", "cheese"},
		Instructions: strings.Repeat("Layer and bake. ", 5),
		Images:       []string{"https://example.com/a.jpg"},
		Source:       "https://example.com/recipes/lasagna/",
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a complete record", func(t *testing.T) {
		t.Parallel()

		ok, issues := recipefeed.Validate(validRecord(), recipefeed.ValidationRules{MinIngredients: 3, RequireImages: true})

		assert.True(t, ok)
		assert.Empty(t, issues)
	})

	t.Run("flags missing ingredients independently of other fields", func(t *testing.T) {
		t.Parallel()

		rec := validRecord()
		rec.Ingredients = []string{}

		ok, issues := recipefeed.Validate(rec, recipefeed.ValidationRules{})

		assert.False(t, ok)
		assert.Equal(t, []string{recipefeed.IssueNoIngredients}, issues)
	})

	t.Run("flags short instructions independently of other fields", func(t *testing.T) {
		t.Parallel()

		rec := validRecord()
		rec.Instructions = "Bake it."

		ok, issues := recipefeed.Validate(rec, recipefeed.ValidationRules{})

		assert.False(t, ok)
		assert.Equal(t, []string{recipefeed.IssueInstructionsShort}, issues)
	})

	t.Run("flags too few ingredients under the source minimum", func(t *testing.T) {
		t.Parallel()

		rec := validRecord()
		rec.Ingredients = []string{"salt", "water"}

		_, issues := recipefeed.Validate(rec, recipefeed.ValidationRules{MinIngredients: 3})

		assert.Equal(t, []string{"Too few ingredients (2)"}, issues)
	})

	t.Run("flags missing images only when required", func(t *testing.T) {
		t.Parallel()

		rec := validRecord()
		rec.Images = nil

		ok, _ := recipefeed.Validate(rec, recipefeed.ValidationRules{})
		assert.True(t, ok)

		_, issues := recipefeed.Validate(rec, recipefeed.ValidationRules{RequireImages: true})
		assert.Equal(t, []string{recipefeed.IssueNoImages}, issues)
	})

	t.Run("reports every failing rule in order", func(t *testing.T) {
		t.Parallel()

		ok, issues := recipefeed.Validate(&recipefeed.CanonicalRecord{}, recipefeed.ValidationRules{RequireImages: true})

		assert.False(t, ok)
		assert.Equal(t, []string{
			recipefeed.IssueMissingName,
			recipefeed.IssueNoIngredients,
			recipefeed.IssueNoInstructions,
			recipefeed.IssueNoImages,
			recipefeed.IssueMissingSourceURL,
		}, issues)
	})
}
