package history

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
)

// Report renders a session as markdown. delta may be nil for a first session.
func Report(s *analysis.Session, delta *Delta, photos []analysis.Photo) string {
	var b strings.Builder

	b.WriteString("# Scalp Analysis Report\n\n")
	fmt.Fprintf(&b, "**Date:** %s\n\n", s.CreatedAt.UTC().Format("January 2, 2006"))

	b.WriteString("| Score | Value | Change |\n")
	b.WriteString("|---|---|---|\n")
	rows := []struct {
		name  string
		value int
		diff  func(Delta) int
	}{
		{"Overall", s.OverallScore, func(d Delta) int { return d.Overall }},
		{"Density", s.DensityScore, func(d Delta) int { return d.Density }},
		{"Hairline", s.HairlineScore, func(d Delta) int { return d.Hairline }},
		{"Crown", s.CrownScore, func(d Delta) int { return d.Crown }},
	}
	for _, r := range rows {
		change := "n/a"
		if delta != nil {
			change = signed(r.diff(*delta))
		}
		fmt.Fprintf(&b, "| %s | %d/100 | %s |\n", r.name, r.value, change)
	}

	b.WriteString("\n## Summary\n\n")
	b.WriteString(strings.TrimSpace(s.AISummary))
	b.WriteString("\n")

	if s.ComparisonNotes.Valid && strings.TrimSpace(s.ComparisonNotes.String) != "" {
		b.WriteString("\n## Changes Since Last Analysis\n\n")
		b.WriteString(strings.TrimSpace(s.ComparisonNotes.String))
		b.WriteString("\n")
	}

	if s.AlertTriggered {
		b.WriteString("\n> **Alert:** significant thinning or recession was noted. Consider consulting a specialist.\n")
	}

	if len(photos) > 0 {
		b.WriteString("\n## Photos\n\n")
		for _, p := range photos {
			fmt.Fprintf(&b, "- %s\n", p.Angle.Label())
		}
	}

	b.WriteString("\n---\n\n_This assessment is informational and is not a medical diagnosis._\n")
	return b.String()
}

// RenderHTML converts report markdown to HTML.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func signed(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}
