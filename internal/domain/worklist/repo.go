// Package worklist builds the prioritized queue a clinician pulls the
// next patient from. Ranking is pure; this package only gathers the
// candidate rows and applies it.
package worklist

import (
	"context"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

// Repository loads the candidate entries the ranking runs over.
type Repository interface {
	// Candidates returns every visit a clinician could act on now:
	// non-terminal visits whose base status puts them in the queue and
	// which carry no pending department work, plus any non-terminal
	// visit whose latest vitals flag a critical condition.
	Candidates(ctx context.Context) ([]workflow.QueueEntry, error)
}
