package prescription

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
	g := api.Group("/prescriptions")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.UpdateStatus)
	g.DELETE("/:id", h.Delete)
	g.GET("/patient/:patientId", h.ListByPatient)
}

type createRequest struct {
	PatientID      uuid.UUID `json:"patientId"`
	MedicationName string    `json:"medicationName"`
	Dosage         string    `json:"dosage"`
	Quantity       int       `json:"quantity"`
	Instructions   *string   `json:"instructions"`
	PrescribedBy   *string   `json:"prescribedBy"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := &Prescription{
		PatientID:      req.PatientID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Quantity:       req.Quantity,
		Instructions:   req.Instructions,
		PrescribedBy:   req.PrescribedBy,
	}
	created, err := h.svc.Create(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return respond.Created(c, "Prescription created successfully", created)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	var f Filter
	if pid := c.QueryParam("patientId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
		}
		f.PatientID = id
	}
	f.Status = Status(c.QueryParam("status"))

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return respond.List(c, "Prescriptions retrieved successfully", items, pagination.NewMeta(total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "Prescription retrieved successfully", p)
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return respond.OK(c, "Prescription status updated to "+string(p.Status), p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.Message(c, "Prescription deleted successfully")
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(),
		patientID, Status(c.QueryParam("status")), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return respond.List(c, "Patient prescriptions retrieved successfully", items, pagination.NewMeta(total, pg))
}
