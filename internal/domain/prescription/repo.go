package prescription

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows prescription listings; zero values mean no filtering.
type Filter struct {
	PatientID uuid.UUID
	Status    Status
}

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// GetByIDForUpdate locks the row for the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Prescription, error)
	GetWithPatient(ctx context.Context, id uuid.UUID) (*WithPatient, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*WithPatient, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Prescription, int, error)
}
