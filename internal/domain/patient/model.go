package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table.
type Patient struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	DateOfBirth string    `db:"date_of_birth" json:"dateOfBirth"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// WalletInfo is the wallet projection embedded in patient reads.
type WalletInfo struct {
	ID      uuid.UUID `json:"id"`
	Balance float64   `json:"balance"`
}

// PatientWithWallet is the GetByID read model.
type PatientWithWallet struct {
	Patient
	Wallet *WalletInfo `json:"wallet,omitempty"`
}

// UpdateInput holds the mutable patient fields; nil means unchanged.
type UpdateInput struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth"`
}
