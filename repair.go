package main

import (
	"go.uber.org/zap"
)

// Rule represents a single text repair rule
type Rule struct {
	Name        string
	Description string
	// Func returns the rewritten text and the number of spans it changed
	Func func(input string) (string, int)
}

// RuleResult records what one rule did during a run
type RuleResult struct {
	Rule     string `json:"rule"`
	Rewrites int    `json:"rewrites"`
}

// Report summarizes a pipeline run
type Report struct {
	RuleSet string       `json:"ruleset"`
	Results []RuleResult `json:"results"`
	Changed bool         `json:"changed"`
	// Passes is the number of times the rule list ran
	Passes  int          `json:"passes"`
}

// Total returns the number of rewrites across all rules
func (r Report) Total() int {
	total := 0
	for _, res := range r.Results {
		total += res.Rewrites
	}
	return total
}

// Pipeline applies an ordered rule set to a document
type Pipeline struct {
	set    RuleSet
	logger *zap.Logger
}

// NewPipeline creates a pipeline for the given rule set. A nil logger
// disables logging.
func NewPipeline(set RuleSet, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{set: set, logger: logger}
}

// RuleSet returns the rule set the pipeline runs
func (p *Pipeline) RuleSet() RuleSet {
	return p.set
}

// maxPasses bounds how often the rule list is repeated. Rules can undo
// each other's whitespace, e.g. a comment opener rewritten inside a marked
// template literal, so one pass is not always a fixed point.
const maxPasses = 4

// Run applies every rule in order, repeating the list until the output
// stops changing, and reports the rewrites each rule made over all passes
func (p *Pipeline) Run(document string) (string, Report) {
	report := Report{
		RuleSet: p.set.Name,
		Results: make([]RuleResult, len(p.set.Rules)),
	}
	for i, rule := range p.set.Rules {
		report.Results[i].Rule = rule.Name
	}

	output := document
	for pass := 1; pass <= maxPasses; pass++ {
		before := output
		for i, rule := range p.set.Rules {
			var n int
			output, n = rule.Func(output)
			report.Results[i].Rewrites += n
			p.logger.Debug("rule applied",
				zap.String("ruleset", p.set.Name),
				zap.String("rule", rule.Name),
				zap.Int("pass", pass),
				zap.Int("rewrites", n))
		}
		report.Passes = pass
		if output == before {
			break
		}
		if pass == maxPasses {
			p.logger.Warn("output still changing after last pass",
				zap.String("ruleset", p.set.Name),
				zap.Int("passes", pass))
		}
	}

	report.Changed = output != document
	return output, report
}

// Repair runs the default rule set over document and returns the result
func Repair(document string) string {
	output, _ := NewPipeline(DefaultRuleSet(), nil).Run(document)
	return output
}
