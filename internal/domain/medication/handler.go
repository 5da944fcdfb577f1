package medication

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	read := api.Group("", auth.RequireRole("admin", "physician", "pharmacist", "nurse"))
	read.GET("/visits/:id/medication-gate", h.CheckGate)
	read.GET("/medication-orders/:id", h.Get)
	read.GET("/visits/:id/medication-orders", h.ListByVisit)

	prescribe := api.Group("", auth.RequireRole("admin", "physician"))
	prescribe.POST("/medication-orders", h.Prescribe)
}

func (h *Handler) CheckGate(c echo.Context) error {
	visitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}
	decision, err := h.svc.CheckGate(c.Request().Context(), visitID)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, decision)
}

func (h *Handler) Prescribe(c echo.Context) error {
	var req struct {
		VisitID uuid.UUID `json:"visit_id"`
		OrderInput
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.VisitID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "visit_id is required")
	}
	actor, _ := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	o, err := h.svc.Prescribe(c.Request().Context(), req.VisitID, actor, req.OrderInput)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, o)
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
