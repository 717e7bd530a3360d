package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with fresh flag state
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	reset := func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(rootCmd)
	for _, sub := range rootCmd.Commands() {
		reset(sub)
	}

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--no-color"))

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIRepairsFile(t *testing.T) {
	path := writeTemp(t, readFixture(t, "corrupted.html"))

	_, err := runCLI(t, "", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, readFixture(t, "repaired.html"), string(data))
}

func TestCLIDryRunAndLegacyRuleSet(t *testing.T) {
	corrupted := readFixture(t, "corrupted.html")
	path := writeTemp(t, corrupted)

	_, err := runCLI(t, "", path, "--dry-run", "--ruleset", "v1")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, corrupted, string(data))

	_, err = runCLI(t, "", path, "--ruleset", "v3")
	assert.Error(t, err)
}

func TestCLICheck(t *testing.T) {
	_, err := runCLI(t, "", "check", writeTemp(t, readFixture(t, "corrupted.html")))
	assert.Error(t, err)

	_, err = runCLI(t, "", "check", writeTemp(t, readFixture(t, "repaired.html")))
	assert.NoError(t, err)
}

func TestCLIExec(t *testing.T) {
	stdin := `{"action":"set_input_text","params":{"text":"$ { a }"}}` + "\n\n" +
		`{"action":"get_report"}` + "\n"

	out, err := runCLI(t, stdin, "exec")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "v2", resp.Result.(map[string]interface{})["ruleset"])
}

func TestCLIConfig(t *testing.T) {
	path := writeConfig(t, "ruleset: v1\ncall_tails:\n  - \"500)\"\n")

	out, err := runCLI(t, "", "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ruleset: v1")
	assert.Contains(t, out, "500)")

	_, err = runCLI(t, "", "config", "--config", path+".missing")
	assert.Error(t, err)
}
