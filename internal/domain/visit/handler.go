package visit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/httperr"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse", "charge_nurse", "lab_tech", "radiologist", "pharmacist"))
	read.GET("/visits", h.List)
	read.GET("/visits/:id", h.Get)

	intake := api.Group("", auth.RequireRole("admin", "nurse", "charge_nurse", "receptionist"))
	intake.POST("/visits", h.Intake)

	triage := api.Group("", auth.RequireRole("admin", "nurse", "charge_nurse"))
	triage.POST("/visits/:id/triage", h.Triage)
	triage.POST("/visits/:id/vitals", h.RecordVitals)

	clinician := api.Group("", auth.RequireRole("admin", "physician"))
	clinician.POST("/visits/:id/open", h.Open)
	clinician.POST("/visits/:id/complete", h.Complete)

	pharmacy := api.Group("", auth.RequireRole("admin", "pharmacist"))
	pharmacy.POST("/visits/:id/dispense", h.Dispense)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/visits/:id/cancel", h.Cancel)
}

// visitView is the API shape of a visit: the display status carries the
// pending-reason precedence so callers never recompute it.
type visitView struct {
	*Visit
	DisplayStatus  string   `json:"display_status"`
	PendingReasons []string `json:"pending_reasons"`
}

func view(v *Visit) visitView {
	return visitView{
		Visit:          v,
		DisplayStatus:  string(v.DisplayStatus()),
		PendingReasons: v.PendingReasonNames(),
	}
}

func (h *Handler) Intake(c echo.Context) error {
	var req struct {
		PatientID uuid.UUID `json:"patient_id"`
		Urgent    bool      `json:"urgent"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	v, err := h.svc.Intake(c.Request().Context(), req.PatientID, req.Urgent)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusCreated, view(v))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(v))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httperr.From(err)
	}
	views := make([]visitView, len(items))
	for i, v := range items {
		views[i] = view(v)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg.Limit, pg.Offset))
}

func (h *Handler) Triage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in VitalsInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := actorID(c)
	v, err := h.svc.Triage(c.Request().Context(), id, actor, in)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(v))
}

func (h *Handler) RecordVitals(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in VitalsInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	vs, err := h.svc.RecordVitals(c.Request().Context(), id, actorID(c), in)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusCreated, vs)
}

func (h *Handler) Open(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Open(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(v))
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		DiagnosisSummary string `json:"diagnosis_summary"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DiagnosisSummary == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "diagnosis_summary is required")
	}
	v, err := h.svc.Complete(c.Request().Context(), id, req.DiagnosisSummary)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(v))
}

func (h *Handler) Dispense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Dispense(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(v))
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(v))
}

func actorID(c echo.Context) uuid.UUID {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil
	}
	return id
}
