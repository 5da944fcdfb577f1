package orders

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/domain/workflow"
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
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse", "lab_tech", "radiologist"))
	read.GET("/batch-orders/:id", h.GetBatch)
	read.GET("/visits/:id/batch-orders", h.ListByVisit)

	order := api.Group("", auth.RequireRole("admin", "physician"))
	order.POST("/batch-orders", h.CreateBatch)

	execute := api.Group("", auth.RequireRole("admin", "lab_tech", "radiologist", "nurse"))
	execute.POST("/order-lines/:id/status", h.UpdateLineStatus)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/order-lines/:id/cancel", h.CancelLine)
}

// batchView adds the computed aggregate to the wire shape.
type batchView struct {
	*BatchOrder
	Status workflow.BatchStatus `json:"status"`
}

func view(b *BatchOrder) batchView {
	return batchView{BatchOrder: b, Status: b.Status()}
}

func (h *Handler) CreateBatch(c echo.Context) error {
	var req struct {
		VisitID      uuid.UUID          `json:"visit_id"`
		Type         workflow.OrderType `json:"type"`
		Lines        []LineInput        `json:"lines"`
		Instructions *string            `json:"instructions,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.VisitID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "visit_id is required")
	}
	actor, _ := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	b, err := h.svc.CreateBatch(c.Request().Context(), req.VisitID, actor, req.Type, req.Lines, req.Instructions)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusCreated, view(b))
}

func (h *Handler) GetBatch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBatch(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(b))
}

func (h *Handler) ListByVisit(c echo.Context) error {
	visitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}
	batches, err := h.svc.ListByVisit(c.Request().Context(), visitID)
	if err != nil {
		return httperr.From(err)
	}
	views := make([]batchView, len(batches))
	for i, b := range batches {
		views[i] = view(b)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) UpdateLineStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Status workflow.LineStatus `json:"status"`
		Result *string             `json:"result,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.UpdateLineStatus(c.Request().Context(), id, req.Status, req.Result)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(b))
}

func (h *Handler) CancelLine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.CancelLine(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, view(b))
}
