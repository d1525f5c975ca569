package recipefeed

import "fmt"

// MinInstructionLength is the shortest instruction text considered usable.
const MinInstructionLength = 50

// Validation issue messages.
const (
	IssueMissingName       = "Missing name"
	IssueNoIngredients     = "No ingredients"
	IssueNoInstructions    = "No instructions"
	IssueInstructionsShort = "Instructions too short"
	IssueNoImages          = "No images"
	IssueMissingSourceURL  = "Missing source URL"
	issueTooFewIngredients = "Too few ingredients (%d)"
)

// ValidationRules are the source-specific quality rules.
type ValidationRules struct {
	// MinIngredients flags records with fewer ingredients. Zero disables it.
	MinIngredients int

	// RequireImages flags records without any image.
	RequireImages bool
}

// Validate checks rec against the quality rules. Every rule is evaluated so
// that all issues are reported. Issues never make a record unusable; they
// are attached to it and counted in the run summary.
func Validate(rec *CanonicalRecord, rules ValidationRules) (bool, []string) {
	var issues []string

	if rec.Name == "" {
		issues = append(issues, IssueMissingName)
	}

	switch n := len(rec.Ingredients); {
	case n == 0:
		issues = append(issues, IssueNoIngredients)
	case n < rules.MinIngredients:
		issues = append(issues, fmt.Sprintf(issueTooFewIngredients, n))
	}

	switch {
	case rec.Instructions == "":
		issues = append(issues, IssueNoInstructions)
	case len([]rune(rec.Instructions)) < MinInstructionLength:
		issues = append(issues, IssueInstructionsShort)
	}

	if rules.RequireImages && len(rec.Images) == 0 {
		issues = append(issues, IssueNoImages)
	}

	if rec.Source == "" {
		issues = append(issues, IssueMissingSourceURL)
	}

	return len(issues) == 0, issues
}
