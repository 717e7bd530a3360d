package main

import (
	"fmt"
	"sort"
)

const (
	RuleSetV1 = "v1"
	RuleSetV2 = "v2"

	DefaultRuleSetName = RuleSetV2
)

// AttributeFix maps an attribute name to the literal its value must be
type AttributeFix struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// PropertyFix is a property assignment whose spacing is normalized to
// "key: value"
type PropertyFix struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

// Tables holds the closed lookup tables the table driven rules read
type Tables struct {
	Attributes      []AttributeFix `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	TemplateMarkers []string       `yaml:"template_markers,omitempty" json:"template_markers,omitempty"`
	CallTails       []string       `yaml:"call_tails,omitempty" json:"call_tails,omitempty"`
	Properties      []PropertyFix  `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// DefaultTables returns the built-in fix tables
func DefaultTables() Tables {
	return Tables{
		Attributes: []AttributeFix{
			{Name: "type", Value: "matrix"},
		},
		TemplateMarkers: []string{"tab-style", "nt-", "auth-view", "clock-", "st-"},
		CallTails:       []string{"event.origin", "1000)", "100)", "200)", "300)"},
		Properties: []PropertyFix{
			{Key: "src", Value: "entry.proxyUrl"},
			{Key: "type", Value: "'newtab'"},
		},
	}
}

// Merge returns t with the entries of extra appended
func (t Tables) Merge(extra Tables) Tables {
	return Tables{
		Attributes:      append(append([]AttributeFix{}, t.Attributes...), extra.Attributes...),
		TemplateMarkers: append(append([]string{}, t.TemplateMarkers...), extra.TemplateMarkers...),
		CallTails:       append(append([]string{}, t.CallTails...), extra.CallTails...),
		Properties:      append(append([]PropertyFix{}, t.Properties...), extra.Properties...),
	}
}

// RuleSet is a named, ordered list of rules
type RuleSet struct {
	Name  string
	Rules []Rule
}

// ruleSetBuilders returns the rule list of each known rule set. Order
// within a list is significant.
var ruleSetBuilders = map[string]func(t Tables) []Rule{
	RuleSetV1: func(t Tables) []Rule {
		return []Rule{
			attributeValueRule(t.Attributes),
			interpolationRule(),
			regexLiteralRule(),
		}
	},
	RuleSetV2: func(t Tables) []Rule {
		return []Rule{
			attributeValueRule(t.Attributes),
			interpolationRule(),
			regexLiteralRule(),
			templateLiteralRule(t.TemplateMarkers),
			commentOpenerRule(),
			callArgumentRule(t.CallTails),
			propertyRule(t.Properties),
		}
	},
}

// BuildRuleSet builds the named rule set over the given tables
func BuildRuleSet(name string, t Tables) (RuleSet, error) {
	build, ok := ruleSetBuilders[name]
	if !ok {
		return RuleSet{}, fmt.Errorf("unknown rule set %q (available: %v)", name, RuleSetNames())
	}
	return RuleSet{Name: name, Rules: build(t)}, nil
}

// DefaultRuleSet returns the default rule set over the built-in tables
func DefaultRuleSet() RuleSet {
	set, _ := BuildRuleSet(DefaultRuleSetName, DefaultTables())
	return set
}

// RuleSetNames returns the known rule set names in sorted order
func RuleSetNames() []string {
	names := make([]string, 0, len(ruleSetBuilders))
	for name := range ruleSetBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rule returns the rule with the given name, if the set has one
func (rs RuleSet) Rule(name string) (Rule, bool) {
	for _, r := range rs.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}
