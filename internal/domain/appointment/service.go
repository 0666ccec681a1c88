package appointment

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"github.com/pharmd/pharmd/internal/platform/apperr"
	"github.com/pharmd/pharmd/internal/platform/db"
)

// Patients is the slice of the patient service this package needs.
type Patients interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	slots    SlotRepository
	bookings BookingRepository
	patients Patients
	runTx    db.TxRunner
}

func NewService(slots SlotRepository, bookings BookingRepository, patients Patients, runTx db.TxRunner) *Service {
	return &Service{slots: slots, bookings: bookings, patients: patients, runTx: runTx}
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d:[0-5]\d$`)
)

// CreateSlot rejects inverted intervals and any boundary-inclusive overlap
// with an existing slot on the same date. The overlap check and insert run
// in one transaction so two racing creators cannot both pass it.
func (s *Service) CreateSlot(ctx context.Context, slot *Slot) (*Slot, error) {
	if err := validateSlot(slot); err != nil {
		return nil, err
	}
	if slot.StartTime >= slot.EndTime {
		return nil, apperr.InvalidArgument("End time must be after start time")
	}

	err := s.runTx(ctx, func(ctx context.Context) error {
		overlap, err := s.slots.HasOverlap(ctx, slot.Date, slot.StartTime, slot.EndTime)
		if err != nil {
			return err
		}
		if overlap {
			return apperr.Conflict("Time slot conflicts with existing appointment slot")
		}
		slot.Status = StatusAvailable
		return s.slots.Create(ctx, slot)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// ListSlots defaults the status filter to available when the caller passes
// none, so the plain listing shows bookable slots.
func (s *Service) ListSlots(ctx context.Context, f SlotFilter, limit, offset int) ([]*Slot, int, error) {
	if f.Status == "" {
		f.Status = StatusAvailable
	}
	return s.slots.List(ctx, f, limit, offset)
}

func (s *Service) ListAvailable(ctx context.Context, date string, serviceType ServiceType) ([]*Slot, error) {
	return s.slots.ListAvailable(ctx, date, serviceType)
}

// UpdateSlot refuses to touch a booked slot; cancel the booking first.
func (s *Service) UpdateSlot(ctx context.Context, id uuid.UUID, in SlotUpdateInput) (*Slot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, apperr.NotFound("Appointment slot not found")
	}
	if slot.Status == StatusBooked {
		return nil, apperr.InvalidState("Cannot update booked appointment slot")
	}
	if in.Date != nil {
		slot.Date = *in.Date
	}
	if in.StartTime != nil {
		slot.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		slot.EndTime = *in.EndTime
	}
	if in.ServiceType != nil {
		slot.ServiceType = *in.ServiceType
	}
	if in.Status != nil {
		slot.Status = *in.Status
	}
	if err := validateSlot(slot); err != nil {
		return nil, err
	}
	if slot.StartTime >= slot.EndTime {
		return nil, apperr.InvalidArgument("End time must be after start time")
	}
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// Book is the double-booking critical section: the slot row is locked for
// the duration of the transaction, so the availability check and the
// status flip act as one step. Of two concurrent bookers, the second
// blocks on the lock and then sees the slot already booked.
func (s *Service) Book(ctx context.Context, patientID, slotID uuid.UUID, notes *string) (*BookingDetail, error) {
	var bookingID uuid.UUID
	err := s.runTx(ctx, func(ctx context.Context) error {
		exists, err := s.patients.Exists(ctx, patientID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("Patient not found")
		}

		slot, err := s.slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return apperr.NotFound("Appointment slot not found")
		}
		if slot.Status != StatusAvailable {
			return apperr.InvalidState("Appointment slot is not available")
		}

		b := &Booking{PatientID: patientID, SlotID: slotID, Notes: notes, Status: StatusBooked}
		if err := s.bookings.Create(ctx, b); err != nil {
			return err
		}
		if err := s.slots.UpdateStatus(ctx, slotID, StatusBooked); err != nil {
			return err
		}
		bookingID = b.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.bookings.GetDetail(ctx, bookingID)
}

// Cancel frees the slot so it can be booked again. Cancelled and completed
// bookings are terminal.
func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	var result *Booking
	err := s.runTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("Booking not found")
		}
		switch b.Status {
		case StatusCancelled:
			return apperr.InvalidState("Booking is already cancelled")
		case StatusCompleted:
			return apperr.InvalidState("Cannot cancel completed booking")
		}

		if err := s.bookings.UpdateStatus(ctx, bookingID, StatusCancelled); err != nil {
			return err
		}
		if err := s.slots.UpdateStatus(ctx, b.SlotID, StatusAvailable); err != nil {
			return err
		}
		b.Status = StatusCancelled
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDetail, error) {
	d, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("Booking not found")
	}
	return d, nil
}

func (s *Service) ListBookings(ctx context.Context, f BookingFilter, limit, offset int) ([]*BookingDetail, int, error) {
	return s.bookings.List(ctx, f, limit, offset)
}

func (s *Service) ListPatientBookings(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*BookingDetail, int, error) {
	exists, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, apperr.NotFound("Patient not found")
	}
	return s.bookings.List(ctx, BookingFilter{PatientID: patientID, Status: status}, limit, offset)
}

func validateSlot(slot *Slot) error {
	var details []apperr.FieldError
	if !dateRe.MatchString(slot.Date) {
		details = append(details, apperr.FieldError{Field: "date", Message: "date must be a YYYY-MM-DD date"})
	}
	if !timeRe.MatchString(slot.StartTime) {
		details = append(details, apperr.FieldError{Field: "startTime", Message: "startTime must be a HH:MM:SS time"})
	}
	if !timeRe.MatchString(slot.EndTime) {
		details = append(details, apperr.FieldError{Field: "endTime", Message: "endTime must be a HH:MM:SS time"})
	}
	if !validServiceTypes[slot.ServiceType] {
		details = append(details, apperr.FieldError{Field: "serviceType", Message: "serviceType must be consultation or pickup"})
	}
	if len(details) > 0 {
		return apperr.Validation(details...)
	}
	return nil
}
