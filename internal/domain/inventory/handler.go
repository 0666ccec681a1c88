package inventory

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pharmd/pharmd/pkg/pagination"
	"github.com/pharmd/pharmd/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medications")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/low-stock", h.ListLowStock)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/stock", h.SetStock)
	g.POST("/:id/restock", h.Restock)
}

type createRequest struct {
	Name          string  `json:"name"`
	StockQuantity int     `json:"stockQuantity"`
	UnitPrice     float64 `json:"unitPrice"`
	Description   *string `json:"description"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m := &Medication{
		Name:          req.Name,
		StockQuantity: req.StockQuantity,
		UnitPrice:     req.UnitPrice,
		Description:   req.Description,
	}
	created, err := h.svc.Create(c.Request().Context(), m)
	if err != nil {
		return err
	}
	return respond.Created(c, "Medication created successfully", created)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("search"), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return respond.List(c, "Medications retrieved successfully", items, pagination.NewMeta(total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "Medication retrieved successfully", m)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "Medication updated successfully", m)
}

type setStockRequest struct {
	StockQuantity int `json:"stockQuantity"`
}

func (h *Handler) SetStock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req setStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.SetStock(c.Request().Context(), id, req.StockQuantity)
	if err != nil {
		return err
	}
	return respond.OK(c, "Medication stock updated successfully", result)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) Restock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Restock(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return err
	}
	return respond.OK(c, "Medication restocked successfully", result)
}

func (h *Handler) ListLowStock(c echo.Context) error {
	pg := pagination.FromContext(c)
	threshold, _ := strconv.Atoi(c.QueryParam("threshold"))
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	items, total, err := h.svc.ListLowStock(c.Request().Context(), threshold, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return respond.ListWithMeta(c, "Low stock medications retrieved successfully",
		items, pagination.NewMeta(total, pg), LowStockMeta{Threshold: threshold, TotalLowStock: total})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.Message(c, "Medication deleted successfully")
}
