package appointment

import (
	"context"

	"github.com/google/uuid"
)

// SlotFilter narrows slot listings; zero values mean no filtering.
type SlotFilter struct {
	Date        string
	ServiceType ServiceType
	Status      Status
}

// BookingFilter narrows booking listings; zero values mean no filtering.
// BookingFilter narrows booking listings; Date matches the booked slot's
// calendar date.
type BookingFilter struct {
	PatientID uuid.UUID
	Status    Status
	Date      string
}

type SlotRepository interface {
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	// GetByIDForUpdate locks the slot row so concurrent bookers serialize
	// on the availability check.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Slot, error)
	Update(ctx context.Context, s *Slot) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, f SlotFilter, limit, offset int) ([]*Slot, int, error)
	ListAvailable(ctx context.Context, date string, serviceType ServiceType) ([]*Slot, error)
	// HasOverlap reports whether any slot on date overlaps [start, end]
	// with inclusive boundaries.
	HasOverlap(ctx context.Context, date, start, end string) (bool, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*BookingDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, f BookingFilter, limit, offset int) ([]*BookingDetail, int, error)
}
