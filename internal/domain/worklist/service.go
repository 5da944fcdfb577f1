package worklist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// Service assembles the worklist from candidate visits.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Entry is one worklist row in queue order.
type Entry struct {
	VisitID       uuid.UUID            `json:"visit_id"`
	PatientID     uuid.UUID            `json:"patient_id"`
	DisplayStatus workflow.VisitStatus `json:"display_status"`
	Condition     workflow.Condition   `json:"condition,omitempty"`
	Tier          int                  `json:"tier"`
	WaitingSince  time.Time            `json:"waiting_since"`
}

// Worklist returns all actionable visits, highest priority first. Two
// calls over an unchanged snapshot return the same order.
func (s *Service) Worklist(ctx context.Context) ([]Entry, error) {
	candidates, err := s.repo.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	ranked := workflow.Rank(candidates)

	out := make([]Entry, len(ranked))
	for i, e := range ranked {
		out[i] = Entry{
			VisitID:       e.VisitID,
			PatientID:     e.PatientID,
			DisplayStatus: e.DisplayStatus,
			Condition:     e.Condition,
			Tier:          workflow.Tier(e),
			WaitingSince:  e.CreatedAt,
		}
	}
	return out, nil
}
