package mapper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/waste-scanner/pkg/types"
)

func TestMapLabelDefaultTable(t *testing.T) {
	m := New()

	tests := []struct {
		label      string
		confidence float64
		category   types.Category
	}{
		{"banana", 0.91, types.CategoryOrganic},
		{"plastic bottle", 0.87, types.CategoryPlastic},
		{"newspaper", 0.75, types.CategoryPaper},
		{"tin can", 0.80, types.CategoryMetal},
		{"wine glass", 0.66, types.CategoryGlass},
		{"mobile phone", 0.93, types.CategoryEWaste},
		{"xyz-nonsense-item", 0.33, types.CategoryUnknown},
	}

	for _, tt := range tests {
		result := m.MapLabel(tt.label, tt.confidence)

		if result.Category != tt.category {
			t.Errorf("MapLabel(%q): expected category %s, got %s", tt.label, tt.category, result.Category)
		}

		if result.Confidence != tt.confidence {
			t.Errorf("MapLabel(%q): confidence should pass through unchanged, expected %f got %f",
				tt.label, tt.confidence, result.Confidence)
		}

		if result.Label != tt.label {
			t.Errorf("MapLabel(%q): expected label preserved, got %q", tt.label, result.Label)
		}

		if result.DisposalInstructions == "" {
			t.Errorf("MapLabel(%q): disposal instructions should never be empty", tt.label)
		}

		if result.Reasoning == "" {
			t.Errorf("MapLabel(%q): reasoning should never be empty", tt.label)
		}
	}
}

func TestMapLabelCaseInsensitive(t *testing.T) {
	m := New()

	upper := m.MapLabel("Plastic Bottle", 0.5)
	lower := m.MapLabel("plastic bottle", 0.5)

	if upper.Category != lower.Category {
		t.Errorf("Expected case-insensitive matching, got %s vs %s", upper.Category, lower.Category)
	}

	if upper.Category != types.CategoryPlastic {
		t.Errorf("Expected PLASTIC, got %s", upper.Category)
	}
}

func TestMapLabelUnknownFallback(t *testing.T) {
	m := New()

	result := m.MapLabel("quantum flux capacitor", 0.33)

	if result.Category != types.CategoryUnknown {
		t.Errorf("Expected UNKNOWN, got %s", result.Category)
	}

	if result.Confidence != 0.33 {
		t.Errorf("Expected confidence 0.33 passed through, got %f", result.Confidence)
	}

	if result.DisposalInstructions != FallbackInstructions {
		t.Errorf("Expected the fixed fallback instructions, got %q", result.DisposalInstructions)
	}
}

func TestFirstMatchWins(t *testing.T) {
	// Both rules match "glass bottle"; the second rule's keyword is the
	// longer, more specific match but must lose to table order.
	plasticFirst := []types.Rule{
		{Keywords: []string{"bottle"}, Category: types.CategoryPlastic, Instructions: "plastics bin"},
		{Keywords: []string{"glass bottle"}, Category: types.CategoryGlass, Instructions: "glass container"},
	}
	glassFirst := []types.Rule{
		{Keywords: []string{"glass bottle"}, Category: types.CategoryGlass, Instructions: "glass container"},
		{Keywords: []string{"bottle"}, Category: types.CategoryPlastic, Instructions: "plastics bin"},
	}

	if got := NewWithRules(plasticFirst).MapLabel("glass bottle", 0.9).Category; got != types.CategoryPlastic {
		t.Errorf("Expected earlier rule to win regardless of specificity, got %s", got)
	}

	if got := NewWithRules(glassFirst).MapLabel("glass bottle", 0.9).Category; got != types.CategoryGlass {
		t.Errorf("Expected reordering to change the winner, got %s", got)
	}
}

func TestReorderNonOverlappingRules(t *testing.T) {
	a := types.Rule{Keywords: []string{"banana"}, Category: types.CategoryOrganic, Instructions: "compost"}
	b := types.Rule{Keywords: []string{"laptop"}, Category: types.CategoryEWaste, Instructions: "e-waste point"}

	forward := NewWithRules([]types.Rule{a, b})
	reversed := NewWithRules([]types.Rule{b, a})

	for _, label := range []string{"banana", "laptop", "garden gnome"} {
		r1 := forward.MapLabel(label, 0.5)
		r2 := reversed.MapLabel(label, 0.5)
		if r1.Category != r2.Category {
			t.Errorf("Reordering non-overlapping rules changed output for %q: %s vs %s",
				label, r1.Category, r2.Category)
		}
	}
}

func TestMapLabelDeterministic(t *testing.T) {
	m := New()

	first := m.MapLabel("cardboard box", 0.7)
	for i := 0; i < 10; i++ {
		if got := m.MapLabel("cardboard box", 0.7); got != first {
			t.Fatalf("MapLabel is not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestDefaultRulesValid(t *testing.T) {
	for i, rule := range DefaultRules() {
		if len(rule.Keywords) == 0 {
			t.Errorf("Rule %d has no keywords", i)
		}
		if !rule.Category.Valid() || rule.Category == types.CategoryUnknown {
			t.Errorf("Rule %d has invalid category %q", i, rule.Category)
		}
		if rule.Instructions == "" {
			t.Errorf("Rule %d has no instructions", i)
		}
	}
}

func TestLoadRules(t *testing.T) {
	content := `rules:
  - keywords: ["banana", "fruit"]
    category: ORGANIC
    instructions: "Compost it."
  - keywords: ["bottle"]
    category: PLASTIC
    instructions: "Plastics bin."
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}

	// File order must be preserved as evaluation order
	if rules[0].Category != types.CategoryOrganic || rules[1].Category != types.CategoryPlastic {
		t.Errorf("Rule order not preserved: %s, %s", rules[0].Category, rules[1].Category)
	}
}

func TestLoadRulesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty table", "rules: []\n"},
		{"unknown category", "rules:\n  - keywords: [\"x\"]\n    category: NUCLEAR\n    instructions: \"n/a\"\n"},
		{"no keywords", "rules:\n  - keywords: []\n    category: PLASTIC\n    instructions: \"bin\"\n"},
		{"no instructions", "rules:\n  - keywords: [\"x\"]\n    category: PLASTIC\n    instructions: \"\"\n"},
	}

	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRules(path); err == nil {
			t.Errorf("%s: expected error, got nil", tt.name)
		}
	}
}

func BenchmarkMapLabel(b *testing.B) {
	m := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.MapLabel("plastic bottle", 0.87)
	}
}
