package wallet

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/pharmd/pharmd/internal/platform/apperr"
	"github.com/pharmd/pharmd/internal/platform/cache"
	"github.com/pharmd/pharmd/internal/platform/db"
)

// creditDescription is the fixed ledger description for top-ups.
const creditDescription = "Funds added to wallet"

// recentTransactionCount is how many entries the summary embeds.
const recentTransactionCount = 10

// Patients is the slice of the patient service this package needs.
type Patients interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	wallets      Repository
	transactions TransactionRepository
	patients     Patients
	runTx        db.TxRunner
	cache        *cache.Cache
}

func NewService(wallets Repository, transactions TransactionRepository, patients Patients, runTx db.TxRunner, c *cache.Cache) *Service {
	return &Service{wallets: wallets, transactions: transactions, patients: patients, runTx: runTx, cache: c}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func balanceKey(patientID uuid.UUID) string {
	return "wallet:balance:" + patientID.String()
}

// CreateForPatient provisions the zero-balance wallet at patient
// registration; it joins the caller's transaction.
func (s *Service) CreateForPatient(ctx context.Context, patientID uuid.UUID) error {
	return s.wallets.Create(ctx, &Wallet{PatientID: patientID, Balance: 0})
}

func (s *Service) requirePatient(ctx context.Context, patientID uuid.UUID) error {
	exists, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Patient not found")
	}
	return nil
}

func (s *Service) requireWallet(ctx context.Context, patientID uuid.UUID) (*Wallet, error) {
	w, err := s.wallets.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("Wallet not found")
	}
	return w, nil
}

func (s *Service) GetBalance(ctx context.Context, patientID uuid.UUID) (*Balance, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	var cached Balance
	if s.cache.GetJSON(ctx, balanceKey(patientID), &cached) {
		return &cached, nil
	}
	w, err := s.requireWallet(ctx, patientID)
	if err != nil {
		return nil, err
	}
	b := &Balance{WalletID: w.ID, PatientID: w.PatientID, Balance: w.Balance}
	s.cache.SetJSON(ctx, balanceKey(patientID), b, 0)
	return b, nil
}

// AddFunds credits the wallet and appends the matching ledger row in one
// unit of work.
func (s *Service) AddFunds(ctx context.Context, patientID uuid.UUID, amount float64) (*FundsResult, error) {
	if amount <= 0 {
		return nil, apperr.InvalidArgument("Amount must be greater than 0")
	}
	amount = roundCents(amount)

	var result *FundsResult
	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.requirePatient(ctx, patientID); err != nil {
			return err
		}
		w, err := s.wallets.GetByPatientForUpdate(ctx, patientID)
		if err != nil {
			return err
		}
		if w == nil {
			return apperr.NotFound("Wallet not found")
		}

		before := w.Balance
		after := roundCents(before + amount)
		if err := s.wallets.UpdateBalance(ctx, w.ID, after); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, &Transaction{
			WalletID:      w.ID,
			Type:          TypeCredit,
			Amount:        amount,
			Description:   creditDescription,
			BalanceBefore: before,
			BalanceAfter:  after,
		}); err != nil {
			return err
		}

		result = &FundsResult{
			WalletID:        w.ID,
			PatientID:       w.PatientID,
			AmountAdded:     amount,
			PreviousBalance: before,
			NewBalance:      after,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, balanceKey(patientID))
	return result, nil
}

// Charge debits the wallet, guarding the non-negative balance invariant,
// and appends the matching ledger row in one unit of work.
func (s *Service) Charge(ctx context.Context, patientID uuid.UUID, amount float64, description string, referenceID *string) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, apperr.InvalidArgument("Amount must be greater than 0")
	}
	if description == "" {
		return nil, apperr.InvalidArgument("Description is required")
	}
	amount = roundCents(amount)

	var result *PaymentResult
	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.requirePatient(ctx, patientID); err != nil {
			return err
		}
		w, err := s.wallets.GetByPatientForUpdate(ctx, patientID)
		if err != nil {
			return err
		}
		if w == nil {
			return apperr.NotFound("Wallet not found")
		}
		if w.Balance < amount {
			return apperr.InsufficientFunds("Insufficient funds")
		}

		before := w.Balance
		after := roundCents(before - amount)
		if err := s.wallets.UpdateBalance(ctx, w.ID, after); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, &Transaction{
			WalletID:      w.ID,
			Type:          TypeDebit,
			Amount:        amount,
			Description:   description,
			ReferenceID:   referenceID,
			BalanceBefore: before,
			BalanceAfter:  after,
		}); err != nil {
			return err
		}

		result = &PaymentResult{
			WalletID:        w.ID,
			PatientID:       w.PatientID,
			AmountPaid:      amount,
			Description:     description,
			ReferenceID:     referenceID,
			PreviousBalance: before,
			NewBalance:      after,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, balanceKey(patientID))
	return result, nil
}

func (s *Service) GetHistory(ctx context.Context, patientID uuid.UUID, typeFilter TransactionType, limit, offset int) (*History, int, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	w, err := s.requireWallet(ctx, patientID)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.transactions.ListByWallet(ctx, w.ID, typeFilter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return &History{WalletID: w.ID, CurrentBalance: w.Balance, Transactions: items}, total, nil
}

func (s *Service) GetSummary(ctx context.Context, patientID uuid.UUID) (*Summary, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	w, err := s.requireWallet(ctx, patientID)
	if err != nil {
		return nil, err
	}
	totals, err := s.transactions.Totals(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.transactions.ListRecent(ctx, w.ID, recentTransactionCount)
	if err != nil {
		return nil, err
	}
	return &Summary{
		WalletID:           w.ID,
		PatientID:          w.PatientID,
		CurrentBalance:     w.Balance,
		TotalCredits:       roundCents(totals.Credits),
		TotalDebits:        roundCents(totals.Debits),
		TotalTransactions:  totals.Count,
		RecentTransactions: recent,
	}, nil
}
