// Package classifier invokes the external AI vision model that scores scalp photos.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// PhotoURL is a fetchable photo URL and the angle it was taken from.
type PhotoURL struct {
	URL   string `json:"url"`
	Angle string `json:"angle"`
}

// Scores are the four scores of an earlier analysis, given as comparison context.
type Scores struct {
	Overall  int `json:"overall"`
	Density  int `json:"density"`
	Hairline int `json:"hairline"`
	Crown    int `json:"crown"`
}

// Request is one analysis call.
type Request struct {
	Photos   []PhotoURL `json:"photoUrls"`
	Previous *Scores    `json:"previousScores,omitempty"`
}

// Result is the structured assessment returned by the classifier.
type Result struct {
	OverallScore    int     `json:"overall_score"`
	DensityScore    int     `json:"density_score"`
	HairlineScore   int     `json:"hairline_score"`
	CrownScore      int     `json:"crown_score"`
	AISummary       string  `json:"ai_summary"`
	AlertTriggered  bool    `json:"alert_triggered"`
	ComparisonNotes *string `json:"comparison_notes,omitempty"`
}

// Classifier scores a set of scalp photos.
type Classifier interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// rawResult mirrors the tool arguments with every field optional so missing
// and mistyped values can be told apart from zero.
type rawResult struct {
	OverallScore    *json.Number `json:"overall_score"`
	DensityScore    *json.Number `json:"density_score"`
	HairlineScore   *json.Number `json:"hairline_score"`
	CrownScore      *json.Number `json:"crown_score"`
	AISummary       *string      `json:"ai_summary"`
	AlertTriggered  *bool        `json:"alert_triggered"`
	ComparisonNotes *string      `json:"comparison_notes"`
}

// DecodeResult parses tool-call arguments and validates them against the
// result schema. Any violation is an unknown-kind error.
func DecodeResult(args []byte) (*Result, error) {
	var raw rawResult
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, NewError(KindUnknown, MsgNoStructuredResult, fmt.Errorf("decode tool arguments: %w", err))
	}

	var res Result
	scores := []struct {
		name string
		in   *json.Number
		out  *int
	}{
		{"overall_score", raw.OverallScore, &res.OverallScore},
		{"density_score", raw.DensityScore, &res.DensityScore},
		{"hairline_score", raw.HairlineScore, &res.HairlineScore},
		{"crown_score", raw.CrownScore, &res.CrownScore},
	}
	for _, s := range scores {
		if s.in == nil {
			return nil, schemaViolation("missing %s", s.name)
		}
		n, err := s.in.Int64()
		if err != nil {
			return nil, schemaViolation("%s is not an integer: %s", s.name, s.in.String())
		}
		*s.out = int(n)
	}
	if raw.AISummary == nil {
		return nil, schemaViolation("missing ai_summary")
	}
	if raw.AlertTriggered == nil {
		return nil, schemaViolation("missing alert_triggered")
	}
	res.AISummary = *raw.AISummary
	res.AlertTriggered = *raw.AlertTriggered
	if raw.ComparisonNotes != nil && *raw.ComparisonNotes != "" {
		notes := *raw.ComparisonNotes
		res.ComparisonNotes = &notes
	}

	if err := Validate(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Validate checks score bounds and the summary.
func Validate(r *Result) error {
	if r == nil {
		return NewError(KindUnknown, MsgNoStructuredResult, nil)
	}
	for name, v := range map[string]int{
		"overall_score":  r.OverallScore,
		"density_score":  r.DensityScore,
		"hairline_score": r.HairlineScore,
		"crown_score":    r.CrownScore,
	} {
		if v < 0 || v > 100 {
			return schemaViolation("%s out of range: %d", name, v)
		}
	}
	if r.AISummary == "" {
		return schemaViolation("empty ai_summary")
	}
	return nil
}

func schemaViolation(format string, args ...any) error {
	return NewError(KindUnknown, MsgInvalidResult, fmt.Errorf(format, args...))
}
