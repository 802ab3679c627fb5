package capture

import (
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
)

// EventRequest for POST /capture/events
type EventRequest struct {
	Event string `json:"event" validate:"required,capture_event"`
}

// SlotResponse is one angle slot without image bytes.
type SlotResponse struct {
	Angle       analysis.Angle `json:"angle"`
	Label       string         `json:"label"`
	ShortLabel  string         `json:"short_label"`
	Instruction string         `json:"instruction"`
	Filled      bool           `json:"filled"`
	Method      Method         `json:"method,omitempty"`
	Filename    string         `json:"filename,omitempty"`
	Preview     string         `json:"preview,omitempty"`
}

// ResultResponse is the analysis outcome shown on Results.
type ResultResponse struct {
	SessionID       uuid.UUID `json:"session_id"`
	OverallScore    int       `json:"overall_score"`
	DensityScore    int       `json:"density_score"`
	HairlineScore   int       `json:"hairline_score"`
	CrownScore      int       `json:"crown_score"`
	AISummary       string    `json:"ai_summary"`
	AlertTriggered  bool      `json:"alert_triggered"`
	ComparisonNotes *string   `json:"comparison_notes,omitempty"`
}

// WizardResponse represents the wizard in API response
type WizardResponse struct {
	ID          uuid.UUID       `json:"id"`
	Step        int             `json:"step"`
	StepName    string          `json:"step_name"`
	Angle       analysis.Angle  `json:"angle,omitempty"`
	Slots       []SlotResponse  `json:"slots"`
	FilledCount int             `json:"filled_count"`
	CanSubmit   bool            `json:"can_submit"`
	Attempts    int             `json:"attempts"`
	Result      *ResultResponse `json:"result,omitempty"`
	Error       *Failure        `json:"error,omitempty"`
	UpdatedAt   string          `json:"updated_at"`
}

// WizardResponseFromEntity converts entity to response
func WizardResponseFromEntity(w *Wizard) WizardResponse {
	resp := WizardResponse{
		ID:        w.ID,
		Step:      int(w.Step),
		StepName:  w.Step.Name(),
		Angle:     w.Step.Angle(),
		CanSubmit: w.CanSubmit(),
		Attempts:  w.Attempts,
		Error:     w.Failure,
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}

	for _, info := range analysis.Angles() {
		slot := SlotResponse{
			Angle:       info.Angle,
			Label:       info.Label,
			ShortLabel:  info.ShortLabel,
			Instruction: info.Instruction,
		}
		if p, ok := w.Photos[info.Angle]; ok && p != nil {
			slot.Filled = true
			slot.Method = p.Method
			slot.Filename = p.Filename
			slot.Preview = p.Preview
			resp.FilledCount++
		}
		resp.Slots = append(resp.Slots, slot)
	}

	if w.Result != nil && w.SessionID != nil {
		resp.Result = resultResponse(*w.SessionID, w.Result)
	}
	return resp
}

func resultResponse(id uuid.UUID, r *classifier.Result) *ResultResponse {
	return &ResultResponse{
		SessionID:       id,
		OverallScore:    r.OverallScore,
		DensityScore:    r.DensityScore,
		HairlineScore:   r.HairlineScore,
		CrownScore:      r.CrownScore,
		AISummary:       r.AISummary,
		AlertTriggered:  r.AlertTriggered,
		ComparisonNotes: r.ComparisonNotes,
	}
}
