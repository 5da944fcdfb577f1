package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

func TestFromMapsTaxonomy(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid transition", &workflow.InvalidTransitionError{Entity: "visit", From: "completed", To: "cancelled"}, http.StatusConflict},
		{"invalid visit state", &workflow.InvalidVisitStateError{Op: "order", Status: workflow.VisitCompleted}, http.StatusConflict},
		{"not assigned", &workflow.NotAssignedError{ActorID: "a", AssigneeID: "b"}, http.StatusForbidden},
		{"write conflict", &workflow.ConcurrentModificationError{Entity: "visit", ID: "x"}, http.StatusConflict},
		{"stale gate", &workflow.StaleGateDecisionError{Reason: "lab outstanding"}, http.StatusConflict},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound},
		{"wrapped no rows", fmt.Errorf("load visit: %w", pgx.ErrNoRows), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			he := From(tc.err)
			if he.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", he.Code, tc.wantCode)
			}
		})
	}
}

func TestFromMarksConflictRetryable(t *testing.T) {
	he := From(&workflow.ConcurrentModificationError{Entity: "visit", ID: "x"})
	b, ok := he.Message.(body)
	if !ok {
		t.Fatalf("message type %T", he.Message)
	}
	if !b.Retryable {
		t.Error("write conflict not marked retryable")
	}

	he = From(&workflow.StaleGateDecisionError{Reason: "lab outstanding"})
	if b, ok := he.Message.(body); !ok || b.Retryable {
		t.Error("stale gate decision must not be retryable")
	}
}
