package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CheckReport summarizes what is left to repair in a document and what
// its HTML structure looks like
type CheckReport struct {
	Residual      []RuleResult `json:"residual"`
	Scripts       int          `json:"scripts"`
	InlineScripts int          `json:"inline_scripts"`
	// TemplateScripts counts inline scripts that use template literals
	TemplateScripts int      `json:"template_scripts"`
	Comments        int      `json:"comments"`
	DuplicateIDs    []string `json:"duplicate_ids,omitempty"`
}

// Clean reports whether no rule would rewrite anything
func (r CheckReport) Clean() bool {
	for _, res := range r.Residual {
		if res.Rewrites > 0 {
			return false
		}
	}
	return true
}

// Check inspects document without modifying it
func Check(document string, set RuleSet) (CheckReport, error) {
	var report CheckReport

	_, dry := NewPipeline(set, nil).Run(document)
	report.Residual = dry.Results

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return report, fmt.Errorf("parse html: %w", err)
	}

	scripts := doc.Find("script")
	report.Scripts = scripts.Length()
	scripts.Each(func(i int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		report.InlineScripts++
		text := s.Text()
		if strings.Contains(text, "`") && strings.Contains(text, "${") {
			report.TemplateScripts++
		}
	})

	seen := make(map[string]int)
	doc.Find("[id]").Each(func(i int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		seen[id]++
	})
	for id, n := range seen {
		if n > 1 {
			report.DuplicateIDs = append(report.DuplicateIDs, id)
		}
	}
	sort.Strings(report.DuplicateIDs)

	for _, n := range doc.Nodes {
		report.Comments += countComments(n)
	}

	return report, nil
}

// countComments counts comment nodes in the tree rooted at n
func countComments(n *html.Node) int {
	count := 0
	if n.Type == html.CommentNode {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countComments(c)
	}
	return count
}
