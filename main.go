package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose     bool
	noColor     bool
	configPath  string
	ruleSetName string

	// Repair flags
	dryRun   bool
	backup   bool
	runCheck bool

	logger *zap.Logger
)

// rootCmd repairs a document in place
var rootCmd = &cobra.Command{
	Use:   "textrepair [file]",
	Short: "Repair whitespace corruption in an HTML/JavaScript file",
	Long: `textrepair runs an ordered list of rewrite rules over a single HTML/JavaScript
file and writes the result back in place. It fixes whitespace that was
inserted into template placeholders, regex literals, template literals used
as ids or class names, HTML comment openers, call arguments and a few known
property assignments.

The rules are idempotent: running textrepair on a repaired file changes
nothing.

The file defaults to ` + DefaultDocumentPath + `.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runRepair,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules of a rule set in the order they run",
	Args:  cobra.NoArgs,
	RunE:  listRules,
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Report residual corruption and HTML structure without writing",
	Long: `Runs every rule in dry mode and reports how many spans each would still
rewrite, together with script, comment and duplicate id counts.
Exits non-zero when residual corruption is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: checkDocument,
}

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Repair a file again every time it is written",
	Args:  cobra.MaximumNArgs(1),
	RunE:  watchDocument,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively repair snippets of text",
	Args:  cobra.NoArgs,
	RunE:  runREPL,
}

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Execute JSON commands read from stdin, one per line",
	Long: `Reads one JSON command per line from stdin and writes one JSON response
per line to stdout.

Example:
  echo '{"action":"set_input_text","params":{"text":"$ { a }"}}' | textrepair exec`,
	Args: cobra.NoArgs,
	RunE: execCommands,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  printConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", DefaultConfigPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&ruleSetName, "ruleset", "r", DefaultRuleSetName, "Rule set to run (v1, v2)")

	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report rewrites without writing the file")
	rootCmd.Flags().BoolVar(&backup, "backup", false, "Copy the original file to <file>.bak before writing")
	rootCmd.Flags().BoolVar(&runCheck, "check", false, "Run the structural check after repairing")

	watchCmd.Flags().BoolVar(&backup, "backup", false, "Copy the original file to <file>.bak before writing")

	rootCmd.AddCommand(rulesCmd, checkCmd, watchCmd, replCmd, execCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSettings merges the config file, the flags and the positional path
func loadSettings(cmd *cobra.Command, args []string) (*Config, error) {
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("ruleset") {
		cfg.RuleSet = ruleSetName
	}
	if f := cmd.Flags().Lookup("backup"); f != nil && f.Changed {
		cfg.Backup = backup
	}
	if len(args) > 0 {
		cfg.Path = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFormatter() *REPLFormatter {
	return NewREPLFormatter(os.Stdout, !noColor)
}

func runRepair(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	set, err := cfg.BuildRuleSet()
	if err != nil {
		return err
	}

	result, err := RepairFile(cfg.Path, NewPipeline(set, logger), FileOptions{
		DryRun: dryRun,
		Backup: cfg.Backup,
	})
	if err != nil {
		return err
	}

	formatter := newFormatter()
	formatter.PrintReport(result.Report)

	if runCheck {
		report, err := Check(result.Output, set)
		if err != nil {
			return err
		}
		formatter.PrintCheck(report)
	}

	switch {
	case dryRun:
		formatter.PrintInfo("Dry run, " + cfg.Path + " not written")
	case result.Written:
		formatter.PrintSuccess("Repair complete: " + cfg.Path)
	default:
		formatter.PrintSuccess("Nothing to repair: " + cfg.Path)
	}
	return nil
}

func listRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	core := NewRepairCore(DefaultTables().Merge(cfg.Tables), logger)
	if err := core.UseRuleSet(cfg.RuleSet); err != nil {
		return err
	}
	return ExecuteREPLCommand(&REPLCommand{Verb: "show", Object: "rules"}, core, newFormatter(), nil)
}

func checkDocument(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	set, err := cfg.BuildRuleSet()
	if err != nil {
		return err
	}

	document, err := ReadDocument(cfg.Path)
	if err != nil {
		return err
	}

	report, err := Check(document, set)
	if err != nil {
		return err
	}
	newFormatter().PrintCheck(report)

	if !report.Clean() {
		return fmt.Errorf("%s: residual corruption found", cfg.Path)
	}
	return nil
}

func watchDocument(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	set, err := cfg.BuildRuleSet()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter := newFormatter()
	w := NewWatcher(cfg.Path, NewPipeline(set, logger), FileOptions{Backup: cfg.Backup}, logger)
	w.OnRepair = func(result FileResult) {
		if result.Written {
			formatter.PrintSuccess(fmt.Sprintf("Repaired %s (%d rewrite(s))", result.Path, result.Report.Total()))
		}
	}

	formatter.PrintInfo("Watching " + cfg.Path + ", press Ctrl-C to stop")
	return w.Run(ctx)
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	core := NewRepairCore(DefaultTables().Merge(cfg.Tables), logger)
	if err := core.UseRuleSet(cfg.RuleSet); err != nil {
		return err
	}
	return NewREPLSession(core, !noColor).Run()
}

func execCommands(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	core := NewRepairCore(DefaultTables().Merge(cfg.Tables), logger)
	if err := core.UseRuleSet(cfg.RuleSet); err != nil {
		return err
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	out := cmd.OutOrStdout()
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fmt.Fprintln(out, core.ExecuteCommand(line))
	}
	return scanner.Err()
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
