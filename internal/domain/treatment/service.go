package treatment

import (
	"context"
	"fmt"
)

// Service lists treatments
type Service struct {
	repo Repository
}

// NewService creates treatment service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the filtered catalog and the size of the whole catalog.
func (s *Service) List(ctx context.Context, filter Filter) (*ListResponse, error) {
	treatments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count treatments: %w", err)
	}

	resp := &ListResponse{
		Treatments: make([]TreatmentResponse, 0, len(treatments)),
		Showing:    len(treatments),
		Available:  total,
	}
	for i := range treatments {
		resp.Treatments = append(resp.Treatments, TreatmentResponseFromEntity(&treatments[i]))
	}
	return resp, nil
}
