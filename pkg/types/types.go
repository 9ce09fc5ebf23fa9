package types

import "fmt"

// Category is one of the fixed waste-disposal classes assigned by the rule table.
type Category string

const (
	CategoryOrganic Category = "ORGANIC"
	CategoryPlastic Category = "PLASTIC"
	CategoryPaper   Category = "PAPER"
	CategoryMetal   Category = "METAL"
	CategoryGlass   Category = "GLASS"
	CategoryEWaste  Category = "E_WASTE"
	CategoryUnknown Category = "UNKNOWN"
)

// Categories lists every valid category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryOrganic,
		CategoryPlastic,
		CategoryPaper,
		CategoryMetal,
		CategoryGlass,
		CategoryEWaste,
		CategoryUnknown,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

// Prediction is a single ranked entry returned by the image classifier.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// ClassificationResult is the immutable outcome of one classification.
type ClassificationResult struct {
	Category             Category `json:"category"`
	Label                string   `json:"label"`
	Confidence           float64  `json:"confidence"`
	Reasoning            string   `json:"reasoning"`
	DisposalInstructions string   `json:"disposalInstructions"`
}

// Rule maps a set of lowercase keyword substrings to a category and its
// disposal guidance. Rules are evaluated in declaration order and the first
// keyword match wins, so the position of a rule in its table is significant.
type Rule struct {
	Keywords     []string `json:"keywords" yaml:"keywords"`
	Category     Category `json:"category" yaml:"category"`
	Instructions string   `json:"instructions" yaml:"instructions"`
}
