package patient

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmd/pharmd/internal/platform/apperr"
	"github.com/pharmd/pharmd/internal/platform/db"
)

// Wallets is the slice of the wallet service the patient service needs:
// provisioning a wallet at registration and reading the balance projection.
type Wallets interface {
	CreateForPatient(ctx context.Context, patientID uuid.UUID) error
	InfoForPatient(ctx context.Context, patientID uuid.UUID) (*WalletInfo, error)
}

type Service struct {
	repo    Repository
	wallets Wallets
	runTx   db.TxRunner
}

func NewService(repo Repository, wallets Wallets, runTx db.TxRunner) *Service {
	return &Service{repo: repo, wallets: wallets, runTx: runTx}
}

// Register creates the patient and its zero-balance wallet in one unit of
// work; a failure on either side rolls back both.
func (s *Service) Register(ctx context.Context, p *Patient) (*Patient, error) {
	if err := validatePatient(p.Name, p.Email, p.Phone, p.DateOfBirth); err != nil {
		return nil, err
	}
	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		return s.wallets.CreateForPatient(ctx, p.ID)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PatientWithWallet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Patient not found")
	}
	result := &PatientWithWallet{Patient: *p}
	w, err := s.wallets.InfoForPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Wallet = w
	return result, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Patient not found")
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = *in.DateOfBirth
	}
	if err := validatePatient(p.Name, p.Email, p.Phone, p.DateOfBirth); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Search requires at least one criterion; matching is case-insensitive
// substring on either field.
func (s *Service) Search(ctx context.Context, name, email string, limit, offset int) ([]*Patient, int, error) {
	if name == "" && email == "" {
		return nil, 0, apperr.InvalidArgument("Please provide name or email to search")
	}
	return s.repo.Search(ctx, name, email, limit, offset)
}

// Delete removes the patient; the wallet, its transactions, prescriptions
// and bookings go with it via the schema's cascading foreign keys.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("Patient not found")
	}
	return s.repo.Delete(ctx, id)
}

func validatePatient(name, email, phone, dateOfBirth string) error {
	var details []apperr.FieldError
	if len(strings.TrimSpace(name)) < 2 {
		details = append(details, apperr.FieldError{Field: "name", Message: "name must be at least 2 characters"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details = append(details, apperr.FieldError{Field: "email", Message: "email must be a valid email address"})
	}
	if len(phone) < 10 {
		details = append(details, apperr.FieldError{Field: "phone", Message: "phone must be at least 10 characters"})
	}
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		details = append(details, apperr.FieldError{Field: "dateOfBirth", Message: "dateOfBirth must be a YYYY-MM-DD date"})
	} else if dob.After(time.Now()) {
		details = append(details, apperr.FieldError{Field: "dateOfBirth", Message: "dateOfBirth must be in the past"})
	}
	if len(details) > 0 {
		return apperr.Validation(details...)
	}
	return nil
}
