package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDocumentPath = "public/index.html"
	DefaultConfigPath   = ".textrepair.yaml"
)

// Config holds the settings of a repair run. Table entries are appended
// to the built-in tables.
type Config struct {
	Path    string `yaml:"path"`
	RuleSet string `yaml:"ruleset"`
	Backup  bool   `yaml:"backup"`
	Tables  `yaml:",inline"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Path:    DefaultDocumentPath,
		RuleSet: DefaultRuleSetName,
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the rule set exists and that no table entry is empty
func (c *Config) Validate() error {
	if _, ok := ruleSetBuilders[c.RuleSet]; !ok {
		return fmt.Errorf("unknown rule set %q (available: %s)", c.RuleSet, strings.Join(RuleSetNames(), ", "))
	}
	for i, a := range c.Attributes {
		if a.Name == "" || a.Value == "" {
			return fmt.Errorf("attributes[%d]: name and value are required", i)
		}
	}
	for i, m := range c.TemplateMarkers {
		if m == "" {
			return fmt.Errorf("template_markers[%d]: empty marker", i)
		}
	}
	for i, tail := range c.CallTails {
		if tail == "" {
			return fmt.Errorf("call_tails[%d]: empty tail", i)
		}
	}
	for i, p := range c.Properties {
		if p.Key == "" || p.Value == "" {
			return fmt.Errorf("properties[%d]: key and value are required", i)
		}
	}
	return nil
}

// BuildRuleSet builds the configured rule set over the built-in tables
// extended by the configured entries
func (c *Config) BuildRuleSet() (RuleSet, error) {
	return BuildRuleSet(c.RuleSet, DefaultTables().Merge(c.Tables))
}

// Marshal returns the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
