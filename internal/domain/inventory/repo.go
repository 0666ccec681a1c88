package inventory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	GetByName(ctx context.Context, name string) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, limit, offset int) ([]*Medication, int, error)
	ListLowStock(ctx context.Context, threshold, limit, offset int) ([]*Medication, int, error)
	SetStock(ctx context.Context, id uuid.UUID, quantity int) (*Medication, error)
	AddStock(ctx context.Context, id uuid.UUID, delta int) (*Medication, error)
	// DecrementStock subtracts quantity only if enough stock remains; the
	// bool result reports whether the conditional update applied.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
}
