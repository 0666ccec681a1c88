package wallet

import (
	"net/http"

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
	g := api.Group("/wallets")
	g.GET("/:patientId/balance", h.GetBalance)
	g.POST("/:patientId/add-funds", h.AddFunds)
	g.POST("/:patientId/pay", h.Pay)
	g.GET("/:patientId/transactions", h.GetHistory)
	g.GET("/:patientId/summary", h.GetSummary)
}

func patientID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
	}
	return id, nil
}

func (h *Handler) GetBalance(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	b, err := h.svc.GetBalance(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "Wallet balance retrieved successfully", b)
}

type addFundsRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) AddFunds(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var req addFundsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.AddFunds(c.Request().Context(), id, req.Amount)
	if err != nil {
		return err
	}
	return respond.OK(c, "Funds added successfully", result)
}

type payRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	ReferenceID *string `json:"referenceId"`
}

func (h *Handler) Pay(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var req payRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Charge(c.Request().Context(), id, req.Amount, req.Description, req.ReferenceID)
	if err != nil {
		return err
	}
	return respond.OK(c, "Payment processed successfully", result)
}

func (h *Handler) GetHistory(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	history, total, err := h.svc.GetHistory(c.Request().Context(), id,
		TransactionType(c.QueryParam("type")), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return respond.List(c, "Transaction history retrieved successfully", history, pagination.NewMeta(total, pg))
}

func (h *Handler) GetSummary(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.GetSummary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "Wallet summary retrieved successfully", summary)
}
