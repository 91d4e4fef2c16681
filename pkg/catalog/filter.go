package catalog

import "strings"

// Assignment pairs a rule with the single category it is documented under.
type Assignment struct {
	Category *Category
	Rule     *Rule
}

// PrimaryCategoryOf returns the first category of the rule in the order the
// caller declared them, or nil if the rule has none.
//
// "First" is literal declaration order. It is not the most specific (longest)
// path nor the alphabetically smallest one.
func PrimaryCategoryOf(rule *Rule) *Category {
	if len(rule.Categories) == 0 {
		return nil
	}
	return rule.Categories[0]
}

// Filter keeps the rules whose primary category path starts with rootPrefix
// and pairs each one with that category. Rules are visited in input order.
func Filter(rules []*Rule, rootPrefix string) []Assignment {
	var result []Assignment
	for _, rule := range rules {
		cat := PrimaryCategoryOf(rule)
		if cat == nil || !strings.HasPrefix(cat.Path, rootPrefix) {
			continue
		}
		result = append(result, Assignment{Category: cat, Rule: rule})
	}
	return result
}
