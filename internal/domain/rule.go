package domain

import "strings"

// Rule returns a fixed answer when its trigger appears in a question.
type Rule struct {
	Trigger string
	Answer  string
}

// CarbonPriceRule is the built-in live-price shortcut.
var CarbonPriceRule = Rule{
	Trigger: "carbon price",
	Answer:  "Current carbon price is $8.5 USD per tCO2e.",
}

// DefaultRules returns the rule list used when no rules file is configured.
func DefaultRules() []Rule {
	return []Rule{CarbonPriceRule}
}

// Matches reports whether the trigger is a substring of the lowercased question.
func (r Rule) Matches(loweredQuestion string) bool {
	return strings.Contains(loweredQuestion, strings.ToLower(r.Trigger))
}

// MatchRule returns the first rule in order that matches.
func MatchRule(rules []Rule, loweredQuestion string) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(loweredQuestion) {
			return r, true
		}
	}
	return Rule{}, false
}
