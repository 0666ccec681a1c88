package patient

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pharmd/pharmd/internal/platform/apperr"
)

// -- Mocks --

type mockRepo struct {
	items map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	return m.items[id], nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	p.UpdatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.items {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) Search(_ context.Context, name, email string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.items {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			continue
		}
		if email != "" && !strings.Contains(strings.ToLower(p.Email), strings.ToLower(email)) {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

type mockWallets struct {
	created   map[uuid.UUID]bool
	createErr error
}

func newMockWallets() *mockWallets {
	return &mockWallets{created: make(map[uuid.UUID]bool)}
}

func (m *mockWallets) CreateForPatient(_ context.Context, patientID uuid.UUID) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created[patientID] = true
	return nil
}

func (m *mockWallets) InfoForPatient(_ context.Context, patientID uuid.UUID) (*WalletInfo, error) {
	if !m.created[patientID] {
		return nil, nil
	}
	return &WalletInfo{ID: uuid.New(), Balance: 0}, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo, *mockWallets) {
	repo := newMockRepo()
	wallets := newMockWallets()
	return NewService(repo, wallets, passthroughTx), repo, wallets
}

func validInput() *Patient {
	return &Patient{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "5551234567",
		DateOfBirth: "1990-04-12",
	}
}

// -- Tests --

func TestRegisterCreatesWallet(t *testing.T) {
	svc, repo, wallets := newTestService()

	p, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("patient id not assigned")
	}
	if _, ok := repo.items[p.ID]; !ok {
		t.Error("patient not persisted")
	}
	if !wallets.created[p.ID] {
		t.Error("wallet not provisioned for patient")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(*Patient)
		field  string
	}{
		{"short name", func(p *Patient) { p.Name = "J" }, "name"},
		{"bad email", func(p *Patient) { p.Email = "not-an-email" }, "email"},
		{"short phone", func(p *Patient) { p.Phone = "123" }, "phone"},
		{"bad dob", func(p *Patient) { p.DateOfBirth = "12/04/1990" }, "dateOfBirth"},
		{"future dob", func(p *Patient) { p.DateOfBirth = "2999-01-01" }, "dateOfBirth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			_, err := svc.Register(context.Background(), in)

			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("got %v, want validation error", err)
			}
			found := false
			for _, d := range appErr.Details {
				if d.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no detail for field %q in %+v", tt.field, appErr.Details)
			}
		})
	}
}

func TestRegisterRollsBackOnWalletFailure(t *testing.T) {
	svc, _, wallets := newTestService()
	wallets.createErr = errors.New("wallet insert failed")

	_, err := svc.Register(context.Background(), validInput())
	if err == nil {
		t.Fatal("expected error when wallet provisioning fails")
	}
}

func TestGetWithWallet(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Wallet == nil {
		t.Fatal("wallet projection missing")
	}
	if got.Wallet.Balance != 0 {
		t.Errorf("new wallet balance = %v, want 0", got.Wallet.Balance)
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), uuid.New())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, _, _ := newTestService()

	created, _ := svc.Register(context.Background(), validInput())

	newPhone := "5559876543"
	got, err := svc.Update(context.Background(), created.ID, UpdateInput{Phone: &newPhone})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Phone != newPhone {
		t.Errorf("phone = %q, want %q", got.Phone, newPhone)
	}
	if got.Name != "Jane Doe" {
		t.Errorf("untouched field changed: name = %q", got.Name)
	}
}

func TestSearchRequiresCriterion(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Search(context.Background(), "", "", 10, 0)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindInvalidArgument {
		t.Fatalf("got %v, want invalid argument", err)
	}
}

func TestSearchByName(t *testing.T) {
	svc, _, _ := newTestService()

	p1 := validInput()
	if _, err := svc.Register(context.Background(), p1); err != nil {
		t.Fatal(err)
	}
	p2 := validInput()
	p2.Name = "Bob Smith"
	p2.Email = "bob@example.com"
	if _, err := svc.Register(context.Background(), p2); err != nil {
		t.Fatal(err)
	}

	items, total, err := svc.Search(context.Background(), "jane", "", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("got %d items (total %d), want 1", len(items), total)
	}
	if items[0].Name != "Jane Doe" {
		t.Errorf("matched %q, want Jane Doe", items[0].Name)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), uuid.New())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("got %v, want not found", err)
	}
}
