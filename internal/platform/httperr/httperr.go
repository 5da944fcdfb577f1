// Package httperr maps workflow domain errors onto HTTP responses. Every
// error in the taxonomy is recoverable by the caller and is surfaced
// verbatim, never swallowed.
package httperr

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/domain/workflow"
)

type body struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}

// From converts a service error into an echo HTTP error. Unrecognized
// errors become 500s; the taxonomy maps to conflict/forbidden/not-found.
func From(err error) *echo.HTTPError {
	var (
		transition *workflow.InvalidTransitionError
		state      *workflow.InvalidVisitStateError
		assigned   *workflow.NotAssignedError
		conflict   *workflow.ConcurrentModificationError
		stale      *workflow.StaleGateDecisionError
	)
	switch {
	case errors.As(err, &transition):
		return echo.NewHTTPError(http.StatusConflict, body{Error: err.Error(), Code: "invalid_transition"})
	case errors.As(err, &state):
		return echo.NewHTTPError(http.StatusConflict, body{Error: err.Error(), Code: "invalid_visit_state"})
	case errors.As(err, &assigned):
		return echo.NewHTTPError(http.StatusForbidden, body{Error: err.Error(), Code: "not_assigned"})
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, body{Error: err.Error(), Code: "concurrent_modification", Retryable: true})
	case errors.As(err, &stale):
		return echo.NewHTTPError(http.StatusConflict, body{Error: err.Error(), Code: "stale_gate_decision"})
	case errors.Is(err, pgx.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, body{Error: "not found", Code: "not_found"})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, body{Error: err.Error(), Code: "internal"})
}
