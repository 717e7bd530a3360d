package main

import (
	"go.uber.org/zap"
)

// RuleInfo describes a rule for listings
type RuleInfo struct {
	Position    int    `json:"position"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RepairCore is the headless session state behind the REPL and the JSON
// command interface
type RepairCore struct {
	tables     Tables
	pipeline   *Pipeline
	inputText  string
	outputText string
	report     Report
	logger     *zap.Logger
}

// NewRepairCore creates a core running the default rule set over tables
func NewRepairCore(tables Tables, logger *zap.Logger) *RepairCore {
	set, _ := BuildRuleSet(DefaultRuleSetName, tables)
	return &RepairCore{
		tables:   tables,
		pipeline: NewPipeline(set, logger),
		logger:   logger,
	}
}

// ============================================================================
// Rule Set Methods
// ============================================================================

// UseRuleSet switches the active rule set and reprocesses the input
func (rc *RepairCore) UseRuleSet(name string) error {
	set, err := BuildRuleSet(name, rc.tables)
	if err != nil {
		return err
	}
	rc.pipeline = NewPipeline(set, rc.logger)
	rc.processText()
	return nil
}

// GetRuleSetName returns the name of the active rule set
func (rc *RepairCore) GetRuleSetName() string {
	return rc.pipeline.RuleSet().Name
}

// ListRules describes the rules of the active rule set in order
func (rc *RepairCore) ListRules() []RuleInfo {
	rules := rc.pipeline.RuleSet().Rules
	infos := make([]RuleInfo, len(rules))
	for i, r := range rules {
		infos[i] = RuleInfo{Position: i + 1, Name: r.Name, Description: r.Description}
	}
	return infos
}

// ============================================================================
// Text Processing Methods
// ============================================================================

// SetInputText sets the input text and repairs it
func (rc *RepairCore) SetInputText(text string) {
	rc.inputText = text
	rc.processText()
}

// GetInputText returns the current input text
func (rc *RepairCore) GetInputText() string {
	return rc.inputText
}

// GetOutputText returns the repaired text
func (rc *RepairCore) GetOutputText() string {
	return rc.outputText
}

// GetReport returns the report of the last run
func (rc *RepairCore) GetReport() Report {
	return rc.report
}

// Check inspects the repaired output with the active rule set
func (rc *RepairCore) Check() (CheckReport, error) {
	return Check(rc.outputText, rc.pipeline.RuleSet())
}

// processText runs the pipeline over the input text
func (rc *RepairCore) processText() {
	rc.outputText, rc.report = rc.pipeline.Run(rc.inputText)
}
