package profile

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest for PUT /profile. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName              *string `json:"full_name" validate:"omitempty,max=100"`
	Age                   *int    `json:"age" validate:"omitempty,gte=1,lte=120"`
	HairType              *string `json:"hair_type" validate:"omitempty,hair_type"`
	FamilyHistoryHairLoss *bool   `json:"family_history_hair_loss"`
	WeeklyReminder        *bool   `json:"weekly_reminder"`
}

// ProfileResponse represents a profile in API response
type ProfileResponse struct {
	UserID                uuid.UUID `json:"user_id"`
	FullName              *string   `json:"full_name"`
	Age                   *int      `json:"age"`
	HairType              *string   `json:"hair_type"`
	FamilyHistoryHairLoss bool      `json:"family_history_hair_loss"`
	WeeklyReminder        bool      `json:"weekly_reminder"`
	UpdatedAt             string    `json:"updated_at"`
}

// ProfileResponseFromEntity converts entity to response
func ProfileResponseFromEntity(p *Profile) ProfileResponse {
	resp := ProfileResponse{
		UserID:                p.UserID,
		FamilyHistoryHairLoss: p.FamilyHistoryHairLoss,
		WeeklyReminder:        p.WeeklyReminder,
		UpdatedAt:             p.UpdatedAt.Format(time.RFC3339),
	}
	if p.FullName.Valid {
		resp.FullName = &p.FullName.String
	}
	if p.Age.Valid {
		age := int(p.Age.Int32)
		resp.Age = &age
	}
	if p.HairType.Valid {
		resp.HairType = &p.HairType.String
	}
	return resp
}
