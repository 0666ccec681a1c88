package prescription

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/pharmd/pharmd/internal/platform/apperr"
	"github.com/pharmd/pharmd/internal/platform/db"
)

// Patients is the slice of the patient service this package needs.
type Patients interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// MedicationInfo is the inventory projection used for pricing and
// fulfillment.
type MedicationInfo struct {
	ID            uuid.UUID
	UnitPrice     float64
	StockQuantity int
}

// Medications is the slice of the inventory service this package needs.
// FindByName returns nil without error when no medication matches, which
// fulfillment treats as a silent skip.
type Medications interface {
	FindByName(ctx context.Context, name string) (*MedicationInfo, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
}

type Service struct {
	repo        Repository
	patients    Patients
	medications Medications
	runTx       db.TxRunner
}

func NewService(repo Repository, patients Patients, medications Medications, runTx db.TxRunner) *Service {
	return &Service{repo: repo, patients: patients, medications: medications, runTx: runTx}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Create validates the input, verifies the patient, and pre-computes the
// total from the current unit price when the medication name matches.
func (s *Service) Create(ctx context.Context, p *Prescription) (*Prescription, error) {
	if err := validatePrescription(p); err != nil {
		return nil, err
	}
	exists, err := s.patients.Exists(ctx, p.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Patient not found")
	}

	med, err := s.medications.FindByName(ctx, p.MedicationName)
	if err != nil {
		return nil, err
	}
	if med != nil {
		if total := roundCents(med.UnitPrice * float64(p.Quantity)); total > 0 {
			p.TotalAmount = &total
		}
	}

	p.Status = StatusPending
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*WithPatient, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithPatient, error) {
	p, err := s.repo.GetWithPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Prescription not found")
	}
	return p, nil
}

// UpdateStatus drives the state machine. Filling consumes stock and fixes
// the total; every effect lands in one transaction so a stock failure
// leaves the prescription untouched.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, target Status) (*Prescription, error) {
	if !validStatuses[target] {
		return nil, apperr.InvalidArgument("Invalid status: %s", target)
	}

	var result *Prescription
	err := s.runTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFound("Prescription not found")
		}
		if !p.Status.CanTransition(target) {
			return apperr.InvalidState("Cannot change status from %s to %s", p.Status, target)
		}

		if target == StatusFilled {
			if err := s.fill(ctx, p); err != nil {
				return err
			}
		}

		p.Status = target
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fill applies the stock and pricing side effects of moving to filled. A
// medication name with no inventory match skips both, mirroring the
// free-text linkage.
func (s *Service) fill(ctx context.Context, p *Prescription) error {
	med, err := s.medications.FindByName(ctx, p.MedicationName)
	if err != nil {
		return err
	}
	if med == nil {
		return nil
	}
	if med.StockQuantity < p.Quantity {
		return apperr.InsufficientStock("Insufficient medication stock")
	}
	ok, err := s.medications.DecrementStock(ctx, med.ID, p.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.InsufficientStock("Insufficient medication stock")
	}
	if p.TotalAmount == nil {
		total := roundCents(med.UnitPrice * float64(p.Quantity))
		p.TotalAmount = &total
	}
	return nil
}

// Delete is only legal while the prescription is still pending.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("Prescription not found")
	}
	if p.Status != StatusPending {
		return apperr.InvalidState("Cannot delete prescription that has been filled or picked up")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Prescription, int, error) {
	exists, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, apperr.NotFound("Patient not found")
	}
	return s.repo.ListByPatient(ctx, patientID, status, limit, offset)
}

func validatePrescription(p *Prescription) error {
	var details []apperr.FieldError
	if p.PatientID == uuid.Nil {
		details = append(details, apperr.FieldError{Field: "patientId", Message: "patientId is required"})
	}
	if len(strings.TrimSpace(p.MedicationName)) < 2 {
		details = append(details, apperr.FieldError{Field: "medicationName", Message: "medicationName must be at least 2 characters"})
	}
	if p.Dosage == "" {
		details = append(details, apperr.FieldError{Field: "dosage", Message: "dosage is required"})
	}
	if p.Quantity < 1 {
		details = append(details, apperr.FieldError{Field: "quantity", Message: "quantity must be at least 1"})
	}
	if len(details) > 0 {
		return apperr.Validation(details...)
	}
	return nil
}
