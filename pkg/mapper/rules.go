package mapper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/menta2k/waste-scanner/pkg/types"
)

// DefaultRules returns the built-in rule table. The slice order is the
// evaluation order; reordering entries changes categorization outcomes for
// labels that match more than one rule.
func DefaultRules() []types.Rule {
	return []types.Rule{
		{
			Keywords: []string{
				"banana", "apple", "orange", "fruit", "vegetable", "food",
				"bread", "pizza", "egg", "corn", "mushroom", "carrot",
				"broccoli", "salad", "peel", "coffee", "tea",
			},
			Category:     types.CategoryOrganic,
			Instructions: "Compost it or place it in the organic waste bin. Remove any stickers or packaging first.",
		},
		{
			Keywords: []string{
				"plastic", "bottle", "cup", "straw", "bag", "wrapper",
				"container", "packet", "styrofoam", "polystyrene",
			},
			Category:     types.CategoryPlastic,
			Instructions: "Rinse it and place it in the plastics recycling bin. Check the resin code if unsure.",
		},
		{
			Keywords: []string{
				"paper", "cardboard", "carton", "newspaper", "magazine",
				"book", "envelope", "box", "notebook", "tissue",
			},
			Category:     types.CategoryPaper,
			Instructions: "Flatten it and place it in the paper recycling bin. Keep it dry and free of food residue.",
		},
		{
			Keywords: []string{
				"can", "tin", "aluminum", "aluminium", "metal", "foil",
				"steel", "bottle cap", "cutlery", "nail", "screw",
			},
			Category:     types.CategoryMetal,
			Instructions: "Rinse it and place it in the metals recycling bin. Crushing cans saves space.",
		},
		{
			Keywords: []string{
				"glass", "jar", "wine", "beer", "vase", "mirror",
			},
			Category:     types.CategoryGlass,
			Instructions: "Rinse it and place it in the glass recycling container. Remove lids and corks first.",
		},
		{
			Keywords: []string{
				"phone", "laptop", "computer", "monitor", "keyboard",
				"mouse", "battery", "charger", "cable", "television",
				"remote", "headphone", "camera", "tablet", "electronic",
			},
			Category:     types.CategoryEWaste,
			Instructions: "Take it to an e-waste collection point. Never put electronics or batteries in household bins.",
		},
	}
}

// ruleFile is the YAML envelope for an external rule table.
type ruleFile struct {
	Rules []types.Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule table from a YAML file. The file order is
// preserved as the evaluation order.
func LoadRules(path string) ([]types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	for i, rule := range file.Rules {
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d has no keywords", i)
		}
		if !rule.Category.Valid() || rule.Category == types.CategoryUnknown {
			return nil, fmt.Errorf("rule %d has invalid category %q", i, rule.Category)
		}
		if rule.Instructions == "" {
			return nil, fmt.Errorf("rule %d has no disposal instructions", i)
		}
	}

	return file.Rules, nil
}
