package recipefeed

import "math"

// RunSummary aggregates the outcome of one ingestion run.
type RunSummary struct {
	Source string `json:"source"`

	Attempted     int `json:"attempted"`
	FetchSuccess  int `json:"fetch_success"`
	FetchFailures int `json:"fetch_failures"`

	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`

	Quality QualityCounts `json:"quality"`

	// SuccessRate is the percentage of attempted URLs that were extracted.
	SuccessRate float64 `json:"success_rate"`
	Threshold   float64 `json:"threshold"`
	Passed      bool    `json:"passed"`

	FailedURLs         []string            `json:"failed_urls"`
	ValidationFailures []ValidationFailure `json:"validation_failures"`
}

// QualityCounts counts records carrying each optional field.
type QualityCounts struct {
	WithImages   int `json:"with_images"`
	WithServings int `json:"with_servings"`
	WithPrepTime int `json:"with_prep_time"`
	WithCookTime int `json:"with_cook_time"`
	Total        int `json:"total"`
}

// ValidationFailure identifies a record that failed validation.
type ValidationFailure struct {
	Name   string   `json:"recipe"`
	URL    string   `json:"url"`
	Issues []string `json:"issues"`
}

// NewRunSummary computes the summary of a run from the attempted URL count,
// the failed URLs and the normalized records.
func NewRunSummary(source string, attempted int, failed []string, records []*CanonicalRecord, threshold float64) *RunSummary {
	s := &RunSummary{
		Source:             source,
		Attempted:          attempted,
		FetchFailures:      len(failed),
		FetchSuccess:       attempted - len(failed),
		Threshold:          threshold,
		FailedURLs:         nonNil(failed),
		ValidationFailures: []ValidationFailure{},
	}

	for _, rec := range records {
		s.Quality.Total++
		if rec.Valid() {
			s.Valid++
		} else {
			s.Invalid++
			s.ValidationFailures = append(s.ValidationFailures, ValidationFailure{
				Name:   rec.Name,
				URL:    rec.Source,
				Issues: rec.Issues,
			})
		}
		if len(rec.Images) > 0 {
			s.Quality.WithImages++
		}
		if rec.Servings != nil {
			s.Quality.WithServings++
		}
		if rec.PrepTime != nil {
			s.Quality.WithPrepTime++
		}
		if rec.CookTime != nil {
			s.Quality.WithCookTime++
		}
	}

	if attempted > 0 {
		s.SuccessRate = float64(s.FetchSuccess*100) / float64(attempted)
	}
	s.Passed = attempted > 0 && s.SuccessRate >= threshold
	return s
}

// RoundedRate returns the success rate rounded to one decimal place.
func (s *RunSummary) RoundedRate() float64 {
	return math.Round(s.SuccessRate*10) / 10
}
