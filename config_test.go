package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textrepair.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDocumentPath, cfg.Path)
	assert.Equal(t, RuleSetV2, cfg.RuleSet)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
path: site/index.html
ruleset: v1
backup: true
attributes:
  - name: mode
    value: multiply
template_markers:
  - card-
call_tails:
  - "500)"
properties:
  - key: theme
    value: "'dark'"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "site/index.html", cfg.Path)
	assert.Equal(t, RuleSetV1, cfg.RuleSet)
	assert.True(t, cfg.Backup)
	assert.Equal(t, []AttributeFix{{Name: "mode", Value: "multiply"}}, cfg.Attributes)
	assert.Equal(t, []string{"card-"}, cfg.TemplateMarkers)
	assert.Equal(t, []string{"500)"}, cfg.CallTails)
	assert.Equal(t, []PropertyFix{{Key: "theme", Value: "'dark'"}}, cfg.Properties)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		content string
		desc    string
	}{
		{"ruleset: v9\n", "Unknown rule set"},
		{"attributes:\n  - name: type\n", "Attribute without value"},
		{"template_markers:\n  - \"\"\n", "Empty marker"},
		{"call_tails:\n  - \"\"\n", "Empty tail"},
		{"properties:\n  - key: src\n", "Property without value"},
		{"path: [unclosed\n", "Malformed YAML"},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, test.content))
			assert.Error(t, err)
		})
	}
}

func TestConfigBuildRuleSetExtendsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemplateMarkers = []string{"card-"}
	cfg.CallTails = []string{"500)"}

	set, err := cfg.BuildRuleSet()
	require.NoError(t, err)

	p := NewPipeline(set, nil)
	output, _ := p.Run("`card- ${ id }` `tab-style ${x}` } , 500) } , 1000)")
	assert.Equal(t, "`card-${id}` `tab-style${x}` }, 500) }, 1000)", output)
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CallTails = []string{"500)"}

	data, err := cfg.Marshal()
	require.NoError(t, err)

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, *cfg, decoded)
}
