package appointment

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType distinguishes what a slot is for.
type ServiceType string

const (
	ServiceConsultation ServiceType = "consultation"
	ServicePickup       ServiceType = "pickup"
)

var validServiceTypes = map[ServiceType]bool{
	ServiceConsultation: true,
	ServicePickup:       true,
}

// Status covers both slots and bookings. A slot cycles available ->
// booked -> available on cancellation; completed is set externally.
// Booking statuses cancelled and completed are terminal.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Slot maps to the appointment_slots table. Date is YYYY-MM-DD, times are
// HH:MM:SS; fixed-width so lexicographic comparison is ordering-correct.
type Slot struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Date        string      `db:"date" json:"date"`
	StartTime   string      `db:"start_time" json:"startTime"`
	EndTime     string      `db:"end_time" json:"endTime"`
	ServiceType ServiceType `db:"service_type" json:"serviceType"`
	Status      Status      `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// SlotUpdateInput holds the mutable slot fields; nil means unchanged.
type SlotUpdateInput struct {
	Date        *string      `json:"date"`
	StartTime   *string      `json:"startTime"`
	EndTime     *string      `json:"endTime"`
	ServiceType *ServiceType `json:"serviceType"`
	Status      *Status      `json:"status"`
}

// Booking maps to the bookings table.
type Booking struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patientId"`
	SlotID    uuid.UUID `db:"slot_id" json:"slotId"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PatientInfo is the patient projection embedded in booking reads.
type PatientInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

// SlotInfo is the slot projection embedded in booking reads.
type SlotInfo struct {
	ID          uuid.UUID   `json:"id"`
	Date        string      `json:"date"`
	StartTime   string      `json:"startTime"`
	EndTime     string      `json:"endTime"`
	ServiceType ServiceType `json:"serviceType"`
}

// BookingDetail is the read model for booking listings and reads.
type BookingDetail struct {
	Booking
	Patient *PatientInfo `json:"patient,omitempty"`
	Slot    *SlotInfo    `json:"slot,omitempty"`
}
