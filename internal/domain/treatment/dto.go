package treatment

import "github.com/google/uuid"

// ListRequest holds the query filters of GET /treatments
type ListRequest struct {
	Category   string `json:"category" validate:"omitempty,treatment_category"`
	Cost       string `json:"cost" validate:"omitempty,level"`
	Commitment string `json:"commitment" validate:"omitempty,level"`
}

// Filter converts the request; "all" means no filter.
func (r ListRequest) Filter() Filter {
	return Filter{
		Category:   Category(orAll(r.Category)),
		Cost:       Level(orAll(r.Cost)),
		Commitment: Level(orAll(r.Commitment)),
	}
}

func orAll(v string) string {
	if v == "all" {
		return ""
	}
	return v
}

// TreatmentResponse represents a treatment in API response
type TreatmentResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        Category  `json:"category"`
	CategoryLabel   string    `json:"category_label"`
	CostLevel       Level     `json:"cost_level"`
	CostLabel       string    `json:"cost_label"`
	CommitmentLevel Level     `json:"commitment_level"`
	CommitmentLabel string    `json:"commitment_label"`
	EvidenceRating  int       `json:"evidence_rating"`
	AffiliateURL    *string   `json:"affiliate_url,omitempty"`
}

// TreatmentResponseFromEntity converts entity to response
func TreatmentResponseFromEntity(t *Treatment) TreatmentResponse {
	resp := TreatmentResponse{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		Category:        t.Category,
		CategoryLabel:   CategoryLabel(t.Category),
		CostLevel:       t.CostLevel,
		CostLabel:       CostLabel(t.CostLevel),
		CommitmentLevel: t.CommitmentLevel,
		CommitmentLabel: CommitmentLabel(t.CommitmentLevel),
		EvidenceRating:  t.EvidenceRating,
	}
	if t.AffiliateURL.Valid {
		resp.AffiliateURL = &t.AffiliateURL.String
	}
	return resp
}

// ListResponse is a filtered page of the catalog.
type ListResponse struct {
	Treatments []TreatmentResponse `json:"treatments"`
	Showing    int                 `json:"showing"`
	Available  int                 `json:"available"`
}
