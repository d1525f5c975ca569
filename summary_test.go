package recipefeed_test

import (
	"testing"

	"github.com/fwojciec/recipefeed"
	"github.com/stretchr/testify/assert"
)

func TestNewRunSummary(t *testing.T) {
	t.Parallel()

	t.Run("computes rate and verdict over attempted URLs", func(t *testing.T) {
		t.Parallel()

		records := []*recipefeed.CanonicalRecord{
			{Name: "A", Source: "u1", Images: []string{"i"}, Servings: intPtr(4)},
			{Name: "B", Source: "u3", Issues: []string{recipefeed.IssueNoIngredients}, PrepTime: intPtr(5)},
		}

		s := recipefeed.NewRunSummary("test", 3, []string{"u2"}, records, 80)

		assert.Equal(t, 3, s.Attempted)
		assert.Equal(t, 2, s.FetchSuccess)
		assert.Equal(t, 1, s.FetchFailures)
		assert.Equal(t, 1, s.Valid)
		assert.Equal(t, 1, s.Invalid)
		assert.InDelta(t, 66.7, s.RoundedRate(), 0.001)
		assert.False(t, s.Passed)
		assert.Equal(t, recipefeed.QualityCounts{WithImages: 1, WithServings: 1, WithPrepTime: 1, Total: 2}, s.Quality)
		assert.Equal(t, []recipefeed.ValidationFailure{{Name: "B", URL: "u3", Issues: []string{recipefeed.IssueNoIngredients}}}, s.ValidationFailures)
	})

	t.Run("passes when the rate meets the threshold", func(t *testing.T) {
		t.Parallel()

		s := recipefeed.NewRunSummary("test", 10, []string{"u"}, nil, 90)

		assert.InDelta(t, 90.0, s.SuccessRate, 0.0001)
		assert.True(t, s.Passed)
	})

	t.Run("fails when nothing was attempted", func(t *testing.T) {
		t.Parallel()

		s := recipefeed.NewRunSummary("test", 0, nil, nil, 0)

		assert.Zero(t, s.SuccessRate)
		assert.False(t, s.Passed)
		assert.Equal(t, []string{}, s.FailedURLs)
	})
}
