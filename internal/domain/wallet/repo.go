package wallet

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*Wallet, error)
	// GetByPatientForUpdate locks the wallet row for the enclosing
	// transaction so concurrent fund movements serialize.
	GetByPatientForUpdate(ctx context.Context, patientID uuid.UUID) (*Wallet, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error
}

// Totals aggregates a wallet's full ledger.
type Totals struct {
	Credits float64
	Debits  float64
	Count   int
}

type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) error
	ListByWallet(ctx context.Context, walletID uuid.UUID, typeFilter TransactionType, limit, offset int) ([]*Transaction, int, error)
	ListRecent(ctx context.Context, walletID uuid.UUID, n int) ([]*Transaction, error)
	Totals(ctx context.Context, walletID uuid.UUID) (*Totals, error)
}
