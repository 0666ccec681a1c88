package wallet

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// Wallet maps to the wallets table. Balance never goes below zero; every
// mutation happens through a transaction-producing operation.
type Wallet struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patientId"`
	Balance   float64   `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Transaction is an append-only ledger row; never updated after creation.
type Transaction struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	WalletID      uuid.UUID       `db:"wallet_id" json:"walletId"`
	Type          TransactionType `db:"type" json:"type"`
	Amount        float64         `db:"amount" json:"amount"`
	Description   string          `db:"description" json:"description"`
	ReferenceID   *string         `db:"reference_id" json:"referenceId,omitempty"`
	BalanceBefore float64         `db:"balance_before" json:"balanceBefore"`
	BalanceAfter  float64         `db:"balance_after" json:"balanceAfter"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

// Balance is the read model for the balance endpoint.
type Balance struct {
	WalletID  uuid.UUID `json:"walletId"`
	PatientID uuid.UUID `json:"patientId"`
	Balance   float64   `json:"balance"`
}

// FundsResult reports a completed credit.
type FundsResult struct {
	WalletID        uuid.UUID `json:"walletId"`
	PatientID       uuid.UUID `json:"patientId"`
	AmountAdded     float64   `json:"amountAdded"`
	PreviousBalance float64   `json:"previousBalance"`
	NewBalance      float64   `json:"newBalance"`
}

// PaymentResult reports a completed debit.
type PaymentResult struct {
	WalletID        uuid.UUID `json:"walletId"`
	PatientID       uuid.UUID `json:"patientId"`
	AmountPaid      float64   `json:"amountPaid"`
	Description     string    `json:"description"`
	ReferenceID     *string   `json:"referenceId,omitempty"`
	PreviousBalance float64   `json:"previousBalance"`
	NewBalance      float64   `json:"newBalance"`
}

// History is the read model for the transaction listing.
type History struct {
	WalletID       uuid.UUID      `json:"walletId"`
	CurrentBalance float64        `json:"currentBalance"`
	Transactions   []*Transaction `json:"transactions"`
}

// Summary aggregates the full ledger plus the most recent entries.
type Summary struct {
	WalletID           uuid.UUID      `json:"walletId"`
	PatientID          uuid.UUID      `json:"patientId"`
	CurrentBalance     float64        `json:"currentBalance"`
	TotalCredits       float64        `json:"totalCredits"`
	TotalDebits        float64        `json:"totalDebits"`
	TotalTransactions  int            `json:"totalTransactions"`
	RecentTransactions []*Transaction `json:"recentTransactions"`
}
