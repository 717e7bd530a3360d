package main

import (
	"testing"
)

type ruleCase struct {
	input    string
	expected string
	rewrites int
	desc     string
}

func runRuleCases(t *testing.T, rule Rule, tests []ruleCase) {
	t.Helper()
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			result, n := rule.Func(test.input)
			if result != test.expected {
				t.Errorf("Input: %q", test.input)
				t.Errorf("Expected: %q", test.expected)
				t.Errorf("Got: %q", result)
			}
			if n != test.rewrites {
				t.Errorf("Expected %d rewrite(s), got %d", test.rewrites, n)
			}

			// A second application must change nothing
			again, n := rule.Func(result)
			if again != result || n != 0 {
				t.Errorf("Rule is not idempotent: %q -> %q (%d rewrites)", result, again, n)
			}
		})
	}
}

func TestAttributeValueRule(t *testing.T) {
	rule := attributeValueRule(DefaultTables().Attributes)

	runRuleCases(t, rule, []ruleCase{
		{`type=" matrix"`, `type="matrix"`, 1, "Single space"},
		{"<feColorMatrix type=\"  \n matrix\" values=\"1\"/>", `<feColorMatrix type="matrix" values="1"/>`, 1, "Mixed whitespace"},
		{`type="matrix"`, `type="matrix"`, 0, "Already correct"},
		{`type=" saturate"`, `type=" saturate"`, 0, "Unknown literal"},
		{`type=" matrix" type=" matrix"`, `type="matrix" type="matrix"`, 2, "Multiple occurrences"},
	})
}

func TestAttributeValueRuleCustomTable(t *testing.T) {
	rule := attributeValueRule([]AttributeFix{{Name: "mode", Value: "multiply"}})

	runRuleCases(t, rule, []ruleCase{
		{`mode=" multiply"`, `mode="multiply"`, 1, "Custom entry"},
		{`type=" matrix"`, `type=" matrix"`, 0, "Default entry absent"},
	})
}

func TestInterpolationRule(t *testing.T) {
	runRuleCases(t, interpolationRule(), []ruleCase{
		{"$ { savedStyle }", "${savedStyle}", 1, "Spaced placeholder"},
		{"${ foo\n   .bar }", "${foo .bar}", 1, "Multi-line expression collapses"},
		{"$\n{\n  user.name\n}", "${user.name}", 1, "Newlines only around expression"},
		{"${ a  +  b }", "${a  +  b}", 1, "Single-line keeps interior spacing"},
		{"${a + b}", "${a + b}", 0, "Well formed with interior spaces"},
		{"${savedStyle}", "${savedStyle}", 0, "Already correct"},
		{"`${ a } and ${ b }`", "`${a} and ${b}`", 2, "Two placeholders"},
		{"${a} ${ b }", "${a} ${b}", 1, "Does not span a well formed placeholder"},
		{"cost $5 {note}", "cost $5 {note}", 0, "Dollar not followed by brace"},
		{"no placeholders here", "no placeholders here", 0, "Plain text"},
	})
}

// The multi-line collapse only happens when the trimmed expression still
// contains a newline. These cases pin that behaviour.
func TestInterpolationNewlineHeuristic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"${\n  a   b\n}", "${a   b}"},
		{"${ a\n\n\t  b }", "${a b}"},
		{"${ cond ?\n    x :\n    y }", "${cond ? x : y}"},
	}

	rule := interpolationRule()
	for _, test := range tests {
		result, _ := rule.Func(test.input)
		if result != test.expected {
			t.Errorf("Input: %q, Expected: %q, Got: %q", test.input, test.expected, result)
		}
	}
}

func TestRegexLiteralRule(t *testing.T) {
	runRuleCases(t, regexLiteralRule(), []ruleCase{
		{
			`const match = str.match(/^([a-z0-9] { 8 } \/[a-z0-9] { 8 } \/)(.*)$/);`,
			`const match = str.match(/^([a-z0-9]{8}\/[a-z0-9]{8}\/)(.*)$/);`,
			1, "Bounded repetition with escaped slashes",
		},
		{
			"str.match(/^([a-z0-9] {\n 8 }\r\n)/);",
			"str.match(/^([a-z0-9]{8})/);",
			1, "Newlines and carriage returns",
		},
		{
			"let  a = 1;  str.match(/^a b/); let  b",
			"let  a = 1;  str.match(/^ab/); let  b",
			1, "Surrounding text untouched",
		},
		{
			"str.match(/^a b/i);\nfoo(/);",
			"str.match(/^a b/i);\nfoo(/);",
			0, "Stops at first unescaped delimiter",
		},
		{
			"str.match(/^[a-z]{8}/);",
			"str.match(/^[a-z]{8}/);",
			0, "Already correct",
		},
		{
			"other.match(/^a b/);",
			"other.match(/^a b/);",
			0, "Different receiver",
		},
	})
}

func TestTemplateLiteralRule(t *testing.T) {
	rule := templateLiteralRule(DefaultTables().TemplateMarkers)

	runRuleCases(t, rule, []ruleCase{
		{"el.className = `tab-style-${ id }`;", "el.className = `tab-style-${id}`;", 1, "Marker with placeholder"},
		{"`nt-\n  ${name}\n  -item`", "`nt-${name}-item`", 1, "Whitespace across the whole body"},
		{"`Hello ${ name }, welcome`", "`Hello ${ name }, welcome`", 0, "No marker"},
		{"`tab-style plain`", "`tab-style plain`", 0, "No placeholder"},
		{"a = ``; b = `clock- ${t}`", "a = ``; b = `clock-${t}`", 1, "Empty literal keeps pairing"},
		{"`auth-view ${v}` + ` ${w} text `", "`auth-view${v}` + ` ${w} text `", 1, "Only marked literal changes"},
		{"`tab-style \\` ${x}`", "`tab-style\\`${x}`", 1, "Escaped backtick"},
		{"`tab-style-${id}`", "`tab-style-${id}`", 0, "Already correct"},
	})
}

func TestCommentOpenerRule(t *testing.T) {
	runRuleCases(t, commentOpenerRule(), []ruleCase{
		{"< !-- comment -->", "<!-- comment -->", 1, "Space after angle bracket"},
		{"<!---- note -->", "<!-- note -->", 1, "Extra dashes"},
		{"<! - - note -->", "<!-- note -->", 1, "Split dashes"},
		{"<!--\nnote -->", "<!-- note -->", 1, "Newline after opener"},
		{"<!--   note -->", "<!-- note -->", 1, "Several spaces"},
		{"<!-- ok -->", "<!-- ok -->", 0, "Canonical with space"},
		{"<!--ok-->", "<!--ok-->", 0, "Canonical without space"},
		{"<!---->", "<!---->", 0, "Empty comment"},
		{"<!-- -->", "<!-- -->", 0, "Empty comment with space"},
		{"<!DOCTYPE html>", "<!DOCTYPE html>", 0, "Doctype"},
	})
}

func TestCallArgumentRule(t *testing.T) {
	rule := callArgumentRule(DefaultTables().CallTails)

	runRuleCases(t, rule, []ruleCase{
		{"setTimeout(() => {\n  run();\n} ,\n 1000);", "setTimeout(() => {\n  run();\n}, 1000);", 1, "Delay after newline"},
		{"postMessage({ a: 1 }  ,  event.origin)", "postMessage({ a: 1 }, event.origin)", 1, "Event origin"},
		{"}, 1000)", "}, 1000)", 0, "Canonical 1000"},
		{"} ,100)", "}, 100)", 1, "100 does not match 1000"},
		{"} , 200) } ,300)", "}, 200) }, 300)", 2, "Two tails"},
		{"} , 250)", "} , 250)", 0, "Unknown tail"},
	})
}

func TestPropertyRule(t *testing.T) {
	rule := propertyRule(DefaultTables().Properties)

	runRuleCases(t, rule, []ruleCase{
		{"src:   entry.proxyUrl", "src: entry.proxyUrl", 1, "Extra spaces"},
		{"src:\n entry.proxyUrl", "src: entry.proxyUrl", 1, "Newline"},
		{"type:'newtab'", "type: 'newtab'", 1, "Missing space"},
		{"type: 'newtab'", "type: 'newtab'", 0, "Canonical"},
		{"type: 'other'", "type: 'other'", 0, "Unknown value"},
	})
}

func TestRewriteMatchesCountsOnlyChanges(t *testing.T) {
	input := "${a} $ {b} ${c}"
	result, n := rewriteMatches(interpolationRe, input, func(s string, loc []int) string {
		return "${" + normalizeExpression(group(s, loc, 1)) + "}"
	})
	if result != "${a} ${b} ${c}" {
		t.Errorf("Got: %q", result)
	}
	if n != 1 {
		t.Errorf("Expected 1 changed span, got %d", n)
	}
}
