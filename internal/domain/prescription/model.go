package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Status follows the pending -> filled -> picked-up lifecycle; picked-up
// is terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusFilled   Status = "filled"
	StatusPickedUp Status = "picked-up"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusFilled:   true,
	StatusPickedUp: true,
}

// allowedTransitions has no reverse edges and no pending -> picked-up
// shortcut.
var allowedTransitions = map[Status]Status{
	StatusPending: StatusFilled,
	StatusFilled:  StatusPickedUp,
}

// CanTransition reports whether moving from s to target is legal.
func (s Status) CanTransition(target Status) bool {
	return allowedTransitions[s] == target
}

// Prescription maps to the prescriptions table. MedicationName is free
// text, matched against the inventory by exact name at pricing and
// fulfillment time; there is no foreign key.
type Prescription struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patientId"`
	MedicationName string    `db:"medication_name" json:"medicationName"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Instructions   *string   `db:"instructions" json:"instructions,omitempty"`
	PrescribedBy   *string   `db:"prescribed_by" json:"prescribedBy,omitempty"`
	TotalAmount    *float64  `db:"total_amount" json:"totalAmount,omitempty"`
	Status         Status    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// PatientInfo is the patient projection embedded in prescription reads.
type PatientInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

// WithPatient is the read model for listings that include the patient.
type WithPatient struct {
	Prescription
	Patient *PatientInfo `json:"patient,omitempty"`
}
