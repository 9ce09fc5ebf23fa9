// Package mapper turns open-vocabulary classifier labels into waste categories.
//
// Mapping is a pure table scan: rules are checked in declaration order and the
// first rule with a keyword substring match wins. There is no scoring and no
// longest-match search; the table order is the single source of truth, so the
// disposal guidance shown to users always comes from a fixed, reviewed table
// and never from the model.
package mapper

import (
	"fmt"
	"strings"

	"github.com/menta2k/waste-scanner/pkg/types"
)

// FallbackInstructions is the disposal text used when no rule matches.
const FallbackInstructions = "Check your local waste authority's guidelines before disposing of this item."

// Mapper maps classifier labels to waste categories using an ordered rule table.
type Mapper struct {
	rules []types.Rule
}

// New creates a Mapper with the built-in default rule table.
func New() *Mapper {
	return NewWithRules(DefaultRules())
}

// NewWithRules creates a Mapper with a custom ordered rule table.
func NewWithRules(rules []types.Rule) *Mapper {
	return &Mapper{rules: rules}
}

// Rules returns a copy of the rule table in evaluation order.
func (m *Mapper) Rules() []types.Rule {
	out := make([]types.Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// MapLabel maps a classifier label to a classification result. The scan is
// case-insensitive and first-match-wins; confidence passes through unchanged.
func (m *Mapper) MapLabel(label string, confidence float64) types.ClassificationResult {
	normalized := strings.ToLower(label)

	for _, rule := range m.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				return types.ClassificationResult{
					Category:             rule.Category,
					Label:                label,
					Confidence:           confidence,
					Reasoning:            fmt.Sprintf("Detected %q, which maps to the %s category.", label, rule.Category),
					DisposalInstructions: rule.Instructions,
				}
			}
		}
	}

	return m.Unknown(label, confidence)
}

// Unknown returns the fixed fallback result for labels no rule matches.
func (m *Mapper) Unknown(label string, confidence float64) types.ClassificationResult {
	return types.ClassificationResult{
		Category:             types.CategoryUnknown,
		Label:                label,
		Confidence:           confidence,
		Reasoning:            "No confident category match was found for the detected item.",
		DisposalInstructions: FallbackInstructions,
	}
}
