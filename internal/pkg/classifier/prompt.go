package classifier

import (
	"fmt"
	"strings"
)

// ToolName is the function the model must call with its assessment.
const ToolName = "submit_hair_analysis"

const toolDescription = "Submit the structured hair analysis results"

const systemPrompt = `You are a hair health analysis AI assistant. You analyze photos of a person's scalp to estimate hair health metrics.

IMPORTANT: You are NOT providing medical diagnosis. All results are informational estimates only.

Analyze the provided photos and evaluate:
1. Hair density (0-100): Overall thickness and coverage
2. Hairline position (0-100): How intact the hairline appears (100 = no recession)
3. Crown health (0-100): Crown area coverage and density
4. Overall health score (0-100): Weighted average considering all factors

Also determine if there are any notable changes worth alerting the user about (set alert_triggered to true only if significant thinning or recession is detected).

Provide a brief, encouraging but honest summary (2-3 sentences). Be supportive and focus on actionable insights.`

// SystemPrompt returns the system instruction, with comparison context when
// previous scores exist.
func SystemPrompt(previous *Scores) string {
	if previous == nil {
		return systemPrompt
	}
	return systemPrompt + fmt.Sprintf(
		"\n\nPrevious analysis scores for comparison: Overall: %d/100, Density: %d/100, Hairline: %d/100, Crown: %d/100. Compare these to the current photos and note any changes.",
		previous.Overall, previous.Density, previous.Hairline, previous.Crown,
	)
}

// UserText returns the user instruction naming the photographed angles.
func UserText(photos []PhotoURL) string {
	angles := make([]string, 0, len(photos))
	for _, p := range photos {
		angles = append(angles, p.Angle)
	}
	return fmt.Sprintf("Please analyze these scalp photos taken from different angles: %s. Provide your structured assessment.",
		strings.Join(angles, ", "))
}

type fieldSpec struct {
	name        string
	kind        string // integer, string, boolean
	description string
	required    bool
}

var resultFields = []fieldSpec{
	{"overall_score", "integer", "Overall hair health score", true},
	{"density_score", "integer", "Hair density score", true},
	{"hairline_score", "integer", "Hairline health score", true},
	{"crown_score", "integer", "Crown area health score", true},
	{"ai_summary", "string", "Brief encouraging summary with actionable insights (2-3 sentences)", true},
	{"alert_triggered", "boolean", "Whether significant changes warrant an alert", true},
	{"comparison_notes", "string", "Notes comparing to previous analysis if available, otherwise null", false},
}

func requiredFields() []string {
	var out []string
	for _, f := range resultFields {
		if f.required {
			out = append(out, f.name)
		}
	}
	return out
}

// jsonSchema is the OpenAI-style parameters object for the tool.
func jsonSchema() map[string]any {
	props := make(map[string]any, len(resultFields))
	for _, f := range resultFields {
		p := map[string]any{"type": f.kind, "description": f.description}
		if f.kind == "integer" {
			p["minimum"] = 0
			p["maximum"] = 100
		}
		props[f.name] = p
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             requiredFields(),
		"additionalProperties": false,
	}
}
