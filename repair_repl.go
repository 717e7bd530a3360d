package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

const replPrompt = "textrepair> "

var errExit = errors.New("exit")

// REPLCommand represents a parsed command
type REPLCommand struct {
	Verb   string
	Object string
	Args   []string
}

// REPLFormatter handles output formatting
type REPLFormatter struct {
	out      io.Writer
	useColor bool
}

// NewREPLFormatter creates a new formatter writing to out
func NewREPLFormatter(out io.Writer, useColor bool) *REPLFormatter {
	return &REPLFormatter{out: out, useColor: useColor}
}

func (f *REPLFormatter) colored(attr color.Attribute, format string, a ...interface{}) {
	if f.useColor {
		c := color.New(attr)
		c.EnableColor()
		c.Fprintf(f.out, format, a...)
		return
	}
	fmt.Fprintf(f.out, format, a...)
}

// PrintSuccess prints a success message
func (f *REPLFormatter) PrintSuccess(message string) {
	f.colored(color.FgGreen, "✓ %s\n", message)
}

// PrintError prints an error message
func (f *REPLFormatter) PrintError(message string) {
	f.colored(color.FgRed, "✗ Error: %s\n", message)
}

// PrintInfo prints an info message
func (f *REPLFormatter) PrintInfo(message string) {
	f.colored(color.FgCyan, "ℹ %s\n", message)
}

// PrintText prints a block of text as is
func (f *REPLFormatter) PrintText(text string) {
	fmt.Fprintln(f.out, text)
}

// PrintTable prints a formatted ASCII table
func (f *REPLFormatter) PrintTable(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i < len(headers)-1 {
				fmt.Fprintf(f.out, "%-*s  ", widths[i], cell)
			} else {
				fmt.Fprintf(f.out, "%s", cell)
			}
		}
		fmt.Fprintln(f.out)
	}

	printRow(headers)
	sep := make([]string, len(headers))
	for i := range headers {
		sep[i] = strings.Repeat("-", widths[i])
	}
	printRow(sep)
	for _, row := range rows {
		printRow(row)
	}
}

// PrintJSON prints formatted JSON
func (f *REPLFormatter) PrintJSON(data interface{}) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		f.PrintError("Failed to format JSON: " + err.Error())
		return
	}
	fmt.Fprintln(f.out, string(jsonBytes))
}

// PrintReport prints the rewrites of a run as a table
func (f *REPLFormatter) PrintReport(report Report) {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, []string{res.Rule, strconv.Itoa(res.Rewrites)})
	}
	f.PrintTable([]string{"RULE", "REWRITES"}, rows)
	fmt.Fprintf(f.out, "%d rewrite(s) with rule set %s\n", report.Total(), report.RuleSet)
}

// PrintCheck prints a structural check report
func (f *REPLFormatter) PrintCheck(report CheckReport) {
	rows := make([][]string, 0, len(report.Residual))
	for _, res := range report.Residual {
		rows = append(rows, []string{res.Rule, strconv.Itoa(res.Rewrites)})
	}
	f.PrintTable([]string{"RULE", "RESIDUAL"}, rows)
	fmt.Fprintf(f.out, "scripts: %d (inline %d, with templates %d), comments: %d\n",
		report.Scripts, report.InlineScripts, report.TemplateScripts, report.Comments)
	if len(report.DuplicateIDs) > 0 {
		f.PrintError("duplicate ids: " + strings.Join(report.DuplicateIDs, ", "))
	}
	if report.Clean() {
		f.PrintSuccess("No residual corruption")
	} else {
		f.PrintInfo("Residual corruption found")
	}
}

// ParseCommand parses a verb-first command string
func ParseCommand(input string) (*REPLCommand, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty command")
	}

	parts := splitArgs(input)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	cmd := &REPLCommand{
		Verb: strings.ToLower(parts[0]),
	}

	if len(parts) > 1 {
		cmd.Object = strings.ToLower(parts[1])
		cmd.Args = parts[2:]
	}

	return cmd, nil
}

// splitArgs splits a command string into arguments, respecting quotes
func splitArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)
	escaped := false

	for _, ch := range input {
		if escaped {
			current.WriteRune(ch)
			escaped = false
			continue
		}

		if ch == '\\' {
			escaped = true
			continue
		}

		if (ch == '"' || ch == '\'') && !inQuotes {
			inQuotes = true
			quoteChar = ch
			continue
		}

		if ch == quoteChar && inQuotes {
			inQuotes = false
			quoteChar = 0
			continue
		}

		if ch == ' ' && !inQuotes {
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
			continue
		}

		current.WriteRune(ch)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}

// lineReader is the part of *readline.Instance the commands need
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// ExecuteREPLCommand executes a REPL command against the core
func ExecuteREPLCommand(cmd *REPLCommand, core *RepairCore, formatter *REPLFormatter, rl lineReader) error {
	switch cmd.Verb {
	case "set":
		return handleSetCommand(cmd, core, formatter, rl)
	case "show":
		return handleShowCommand(cmd, core, formatter)
	case "use":
		if cmd.Object == "" {
			formatter.PrintError("use requires a rule set name (" + strings.Join(RuleSetNames(), ", ") + ")")
			return nil
		}
		if err := core.UseRuleSet(cmd.Object); err != nil {
			formatter.PrintError(err.Error())
			return nil
		}
		formatter.PrintSuccess("Using rule set " + core.GetRuleSetName())
	case "check":
		report, err := core.Check()
		if err != nil {
			formatter.PrintError(err.Error())
			return nil
		}
		formatter.PrintCheck(report)
	case "help":
		printHelp(formatter.out, cmd.Object)
	case "exit", "quit":
		return errExit
	default:
		formatter.PrintError(fmt.Sprintf("Unknown command: %s (type 'help')", cmd.Verb))
	}
	return nil
}

func handleSetCommand(cmd *REPLCommand, core *RepairCore, formatter *REPLFormatter, rl lineReader) error {
	if cmd.Object != "input" {
		formatter.PrintError("set requires 'input' argument")
		return nil
	}

	var text string
	if len(cmd.Args) > 0 {
		text = strings.Join(cmd.Args, " ")
	} else {
		if rl == nil {
			formatter.PrintError("multi-line input needs an interactive session, pass the text as an argument")
			return nil
		}
		formatter.PrintInfo("Enter text (end with a line containing only '.'):")
		text = readMultiline(rl)
	}

	core.SetInputText(text)
	formatter.PrintSuccess(fmt.Sprintf("Input set, %d rewrite(s)", core.GetReport().Total()))
	return nil
}

// readMultiline reads lines until a lone "." or EOF. Blank lines are kept
// because documents contain them.
func readMultiline(rl lineReader) string {
	var lines []string
	rl.SetPrompt("")
	defer rl.SetPrompt(replPrompt)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err != nil {
			break
		}
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func handleShowCommand(cmd *REPLCommand, core *RepairCore, formatter *REPLFormatter) error {
	switch cmd.Object {
	case "input":
		formatter.PrintText(core.GetInputText())
	case "output":
		formatter.PrintText(core.GetOutputText())
	case "report":
		if len(cmd.Args) > 0 && cmd.Args[0] == "--json" {
			formatter.PrintJSON(core.GetReport())
			return nil
		}
		formatter.PrintReport(core.GetReport())
	case "rules":
		rows := [][]string{}
		for _, r := range core.ListRules() {
			rows = append(rows, []string{strconv.Itoa(r.Position), r.Name, r.Description})
		}
		formatter.PrintInfo("Rule set " + core.GetRuleSetName())
		formatter.PrintTable([]string{"#", "RULE", "DESCRIPTION"}, rows)
	default:
		formatter.PrintError("show requires 'input', 'output', 'report' or 'rules' argument")
	}
	return nil
}

func printHelp(out io.Writer, command string) {
	if command == "" {
		fmt.Fprint(out, `
Commands:
  set input [text]        Set the text to repair (multi-line if no text)
  show input|output       Show the input or the repaired text
  show report [--json]    Show rewrites per rule
  show rules              List the rules of the active rule set
  use <ruleset>           Switch rule set (v1, v2)
  check                   Check the repaired text for residual corruption
  history                 List the commands entered in this session
  help [command]          Show help
  exit                    Leave the REPL
`)
		return
	}

	helps := map[string]string{
		"set": `
set input <text>
  Sets the text to repair and runs the active rule set over it.

  Examples:
    set input "$ { savedStyle }"
    set input
      (then enter multi-line text, finish with a line containing '.')
`,
		"show": `
show input      Show the text as entered
show output     Show the repaired text
show report     Show how many spans each rule rewrote
show report --json
                Same, as JSON
show rules      List the rules in order
`,
		"use": `
use <ruleset>
  Switches the active rule set and repairs the input again.

  Example:
    use v1
`,
		"check": `
check
  Runs the structural check over the repaired text.
`,
	}

	if help, ok := helps[command]; ok {
		fmt.Fprintln(out, help)
	} else {
		fmt.Fprintf(out, "No help available for '%s'\n", command)
		fmt.Fprintln(out, "Type 'help' for a list of all commands")
	}
}

// REPLSession manages the REPL interactive session
type REPLSession struct {
	core      *RepairCore
	formatter *REPLFormatter
	history   []string
}

// NewREPLSession creates a new REPL session over core
func NewREPLSession(core *RepairCore, useColor bool) *REPLSession {
	return &REPLSession{
		core:      core,
		formatter: NewREPLFormatter(os.Stdout, useColor),
		history:   make([]string, 0),
	}
}

// Execute records line in the session history and runs it
func (rs *REPLSession) Execute(line string, rl lineReader) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}

	if cmd.Verb == "history" {
		for i, h := range rs.history {
			fmt.Fprintf(rs.formatter.out, "%3d  %s\n", i+1, h)
		}
		rs.history = append(rs.history, line)
		return nil
	}

	rs.history = append(rs.history, line)
	return ExecuteREPLCommand(cmd, rs.core, rs.formatter, rl)
}

// Run starts the interactive REPL loop
func (rs *REPLSession) Run() error {
	rl, err := readline.New(replPrompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	rs.formatter.PrintInfo("TextRepair REPL, rule set " + rs.core.GetRuleSetName())
	rs.formatter.PrintInfo("Type 'help' for available commands")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			fmt.Fprintln(rs.formatter.out)
			break
		} else if err != nil {
			rs.formatter.PrintError(err.Error())
			continue
		}

		if err := rs.Execute(line, rl); err != nil {
			if errors.Is(err, errExit) {
				break
			}
			rs.formatter.PrintError(err.Error())
		}
	}

	rs.formatter.PrintInfo("Goodbye!")
	return nil
}
