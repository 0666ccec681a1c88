package appointment

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
	g := api.Group("/appointments")
	g.POST("/slots", h.CreateSlot)
	g.GET("/slots", h.ListSlots)
	g.GET("/slots/available", h.ListAvailable)
	g.PUT("/slots/:id", h.UpdateSlot)
	g.POST("/book", h.Book)
	g.GET("/bookings", h.ListBookings)
	g.GET("/bookings/:id", h.GetBooking)
	g.PUT("/bookings/:id/cancel", h.Cancel)
	g.GET("/patients/:patientId/bookings", h.ListPatientBookings)
}

type createSlotRequest struct {
	Date        string      `json:"date"`
	StartTime   string      `json:"startTime"`
	EndTime     string      `json:"endTime"`
	ServiceType ServiceType `json:"serviceType"`
}

func (h *Handler) CreateSlot(c echo.Context) error {
	var req createSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slot := &Slot{Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime, ServiceType: req.ServiceType}
	created, err := h.svc.CreateSlot(c.Request().Context(), slot)
	if err != nil {
		return err
	}
	return respond.Created(c, "Appointment slot created successfully", created)
}

func (h *Handler) ListSlots(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := SlotFilter{
		Date:        c.QueryParam("date"),
		ServiceType: ServiceType(c.QueryParam("serviceType")),
		Status:      Status(c.QueryParam("status")),
	}
	items, total, err := h.svc.ListSlots(c.Request().Context(), f, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return respond.List(c, "Appointment slots retrieved successfully", items, pagination.NewMeta(total, pg))
}

func (h *Handler) ListAvailable(c echo.Context) error {
	items, err := h.svc.ListAvailable(c.Request().Context(),
		c.QueryParam("date"), ServiceType(c.QueryParam("serviceType")))
	if err != nil {
		return err
	}
	return respond.OK(c, "Available appointment slots retrieved successfully", items)
}

func (h *Handler) UpdateSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in SlotUpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slot, err := h.svc.UpdateSlot(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "Appointment slot updated successfully", slot)
}

type bookRequest struct {
	PatientID uuid.UUID `json:"patientId"`
	SlotID    uuid.UUID `json:"slotId"`
	Notes     *string   `json:"notes"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	detail, err := h.svc.Book(c.Request().Context(), req.PatientID, req.SlotID, req.Notes)
	if err != nil {
		return err
	}
	return respond.Created(c, "Appointment booked successfully", detail)
}

func (h *Handler) ListBookings(c echo.Context) error {
	pg := pagination.FromContext(c)
	var f BookingFilter
	if pid := c.QueryParam("patientId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
		}
		f.PatientID = id
	}
	f.Status = Status(c.QueryParam("status"))
	f.Date = c.QueryParam("date")

	items, total, err := h.svc.ListBookings(c.Request().Context(), f, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return respond.List(c, "Bookings retrieved successfully", items, pagination.NewMeta(total, pg))
}

func (h *Handler) GetBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	detail, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "Booking retrieved successfully", detail)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "Booking cancelled successfully", b)
}

func (h *Handler) ListPatientBookings(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatientBookings(c.Request().Context(),
		patientID, Status(c.QueryParam("status")), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return respond.List(c, "Patient bookings retrieved successfully", items, pagination.NewMeta(total, pg))
}
