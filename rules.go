package main

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	interpolationRe = regexp.MustCompile(`\$\s*\{\s*([^}]+?)\s*\}`)
	// The body stops at the first unescaped slash.
	regexLiteralRe  = regexp.MustCompile(`str\.match\(/\^((?:[^/\\]|\\(?s:.))+)/\);`)
	templateRe      = regexp.MustCompile("`((?:[^`\\\\]|\\\\(?s:.))*)`")
	commentOpenerRe = regexp.MustCompile(`<\s*!\s*-\s*-[-\s]*`)
)

// Substitution is one entry of a closed fix table: every match of
// Pattern is replaced by the literal Replace.
type Substitution struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// rewriteMatches replaces each match of re with the value returned by fn
// and counts the spans whose text actually changed. fn receives the whole
// input and the submatch index pairs of the match.
func rewriteMatches(re *regexp.Regexp, input string, fn func(input string, loc []int) string) (string, int) {
	locs := re.FindAllStringSubmatchIndex(input, -1)
	if len(locs) == 0 {
		return input, 0
	}

	var result strings.Builder
	result.Grow(len(input))

	last, count := 0, 0
	for _, loc := range locs {
		original := input[loc[0]:loc[1]]
		replacement := fn(input, loc)
		if replacement != original {
			count++
		}
		result.WriteString(input[last:loc[0]])
		result.WriteString(replacement)
		last = loc[1]
	}

	if count == 0 {
		return input, 0
	}
	result.WriteString(input[last:])
	return result.String(), count
}

// group returns submatch n of a match located by loc
func group(input string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return input[loc[2*n]:loc[2*n+1]]
}

// applySubstitutions runs each table entry in order
func applySubstitutions(input string, subs []Substitution) (string, int) {
	total := 0
	for _, sub := range subs {
		var n int
		input, n = rewriteMatches(sub.Pattern, input, func(string, []int) string {
			return sub.Replace
		})
		total += n
	}
	return input, total
}

// Rule implementations

// attributeValueRule removes stray whitespace in front of known attribute
// literals, e.g. type=" matrix" becomes type="matrix".
func attributeValueRule(fixes []AttributeFix) Rule {
	subs := make([]Substitution, 0, len(fixes))
	for _, fix := range fixes {
		subs = append(subs, Substitution{
			Name:    fix.Name + "=" + fix.Value,
			Pattern: regexp.MustCompile(regexp.QuoteMeta(fix.Name) + `="\s+` + regexp.QuoteMeta(fix.Value) + `"`),
			Replace: fix.Name + `="` + fix.Value + `"`,
		})
	}

	return Rule{
		Name:        "attribute-value",
		Description: "Remove whitespace before known attribute literals",
		Func: func(input string) (string, int) {
			return applySubstitutions(input, subs)
		},
	}
}

// interpolationRule joins the sigil and brace of ${...} placeholders and
// trims the enclosed expression. Expressions that still span lines after
// trimming have every whitespace run collapsed to one space.
func interpolationRule() Rule {
	return Rule{
		Name:        "interpolation",
		Description: "Normalize ${...} placeholders",
		Func: func(input string) (string, int) {
			return rewriteMatches(interpolationRe, input, func(s string, loc []int) string {
				return "${" + normalizeExpression(group(s, loc, 1)) + "}"
			})
		},
	}
}

func normalizeExpression(expr string) string {
	expr = strings.TrimSpace(expr)
	if strings.Contains(expr, "\n") {
		expr = strings.TrimSpace(whitespaceRe.ReplaceAllString(expr, " "))
	}
	return expr
}

// regexLiteralRule strips whitespace from the body of str.match(/^.../);
// calls.
func regexLiteralRule() Rule {
	return Rule{
		Name:        "regex-literal",
		Description: "Remove whitespace inside anchored str.match regex literals",
		Func: func(input string) (string, int) {
			return rewriteMatches(regexLiteralRe, input, func(s string, loc []int) string {
				body := whitespaceRe.ReplaceAllString(group(s, loc, 1), "")
				return "str.match(/^" + body + "/);"
			})
		},
	}
}

// templateLiteralRule removes all whitespace from backtick literals that
// build element ids or class names. A literal qualifies when it holds a
// placeholder and one of the markers.
func templateLiteralRule(markers []string) Rule {
	return Rule{
		Name:        "template-literal",
		Description: "Collapse whitespace in id/class template literals",
		Func: func(input string) (string, int) {
			return rewriteMatches(templateRe, input, func(s string, loc []int) string {
				body := group(s, loc, 1)
				if !strings.Contains(body, "${") || !containsAny(body, markers) {
					return s[loc[0]:loc[1]]
				}
				return "`" + whitespaceRe.ReplaceAllString(body, "") + "`"
			})
		},
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// commentOpenerRule rewrites malformed <!-- openers to "<!-- ". Openers
// directly followed by '>' belong to empty comments and are kept.
func commentOpenerRule() Rule {
	return Rule{
		Name:        "comment-opener",
		Description: "Normalize malformed HTML comment openers",
		Func: func(input string) (string, int) {
			return rewriteMatches(commentOpenerRe, input, func(s string, loc []int) string {
				opener := s[loc[0]:loc[1]]
				if opener == "<!--" || opener == "<!-- " {
					return opener
				}
				if loc[1] < len(s) && s[loc[1]] == '>' {
					return opener
				}
				return "<!-- "
			})
		},
	}
}

// callArgumentRule restores "}, tail" for each known call tail
func callArgumentRule(tails []string) Rule {
	subs := make([]Substitution, 0, len(tails))
	for _, tail := range tails {
		subs = append(subs, Substitution{
			Name:    tail,
			Pattern: regexp.MustCompile(`\}\s*,\s*` + regexp.QuoteMeta(tail)),
			Replace: "}, " + tail,
		})
	}

	return Rule{
		Name:        "call-argument",
		Description: "Restore comma spacing before known call arguments",
		Func: func(input string) (string, int) {
			return applySubstitutions(input, subs)
		},
	}
}

// propertyRule normalizes "key: value" spacing for known properties
func propertyRule(props []PropertyFix) Rule {
	subs := make([]Substitution, 0, len(props))
	for _, prop := range props {
		subs = append(subs, Substitution{
			Name:    prop.Key,
			Pattern: regexp.MustCompile(regexp.QuoteMeta(prop.Key) + `:\s*` + regexp.QuoteMeta(prop.Value)),
			Replace: prop.Key + ": " + prop.Value,
		})
	}

	return Rule{
		Name:        "property",
		Description: "Normalize spacing of known property assignments",
		Func: func(input string) (string, int) {
			return applySubstitutions(input, subs)
		},
	}
}
