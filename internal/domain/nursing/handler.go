package nursing

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/domain/visit"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse", "charge_nurse"))
	read.GET("/nurse-assignments/:id", h.Get)
	read.GET("/visits/:id/nurse-assignments", h.ListByVisit)

	order := api.Group("", auth.RequireRole("admin", "physician"))
	order.POST("/nurse-assignments", h.Assign)

	complete := api.Group("", auth.RequireRole("admin", "nurse", "charge_nurse"))
	complete.POST("/nurse-assignments/:id/complete", h.Complete)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/nurse-assignments/:id/cancel", h.Cancel)
}

func (h *Handler) Assign(c echo.Context) error {
	var req struct {
		VisitID         uuid.UUID `json:"visit_id"`
		ServiceID       uuid.UUID `json:"service_id"`
		AssignedNurseID uuid.UUID `json:"assigned_nurse_id"`
		Instructions    *string   `json:"instructions,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.VisitID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "visit_id is required")
	}
	actor, _ := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	a, err := h.svc.Assign(c.Request().Context(), req.VisitID, req.ServiceID, req.AssignedNurseID, actor, req.Instructions)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	actor, _ := uuid.Parse(auth.UserIDFromContext(ctx))
	override := auth.HasRole(ctx, "charge_nurse") || auth.HasRole(ctx, "admin")
	a, v, err := h.svc.Complete(ctx, id, actor, req.Notes, override)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, struct {
		Assignment *Assignment  `json:"assignment"`
		Visit      *visit.Visit `json:"visit"`
	}{a, v})
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListByVisit(c echo.Context) error {
	visitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}
	list, err := h.svc.ListByVisit(c.Request().Context(), visitID)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, list)
}
