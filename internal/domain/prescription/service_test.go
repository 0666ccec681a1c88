package prescription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pharmd/pharmd/internal/platform/apperr"
)

// -- Mocks --

type mockRepo struct {
	items map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	return m.items[id], nil
}

func (m *mockRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRepo) GetWithPatient(_ context.Context, id uuid.UUID) (*WithPatient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &WithPatient{Prescription: *p}, nil
}

func (m *mockRepo) Update(_ context.Context, p *Prescription) error {
	p.UpdatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*WithPatient, int, error) {
	var result []*WithPatient
	for _, p := range m.items {
		if f.PatientID != uuid.Nil && p.PatientID != f.PatientID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		result = append(result, &WithPatient{Prescription: *p})
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Prescription, int, error) {
	var result []*Prescription
	for _, p := range m.items {
		if p.PatientID != patientID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

type mockPatients struct {
	ids map[uuid.UUID]bool
}

func (m *mockPatients) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.ids[id], nil
}

type stockedMedication struct {
	MedicationInfo
	Name string
}

type mockMedications struct {
	meds map[uuid.UUID]*stockedMedication
}

func newMockMedications() *mockMedications {
	return &mockMedications{meds: make(map[uuid.UUID]*stockedMedication)}
}

func (m *mockMedications) add(name string, stock int, price float64) uuid.UUID {
	id := uuid.New()
	m.meds[id] = &stockedMedication{
		MedicationInfo: MedicationInfo{ID: id, UnitPrice: price, StockQuantity: stock},
		Name:           name,
	}
	return id
}

func (m *mockMedications) FindByName(_ context.Context, name string) (*MedicationInfo, error) {
	for _, med := range m.meds {
		if med.Name == name {
			info := med.MedicationInfo
			return &info, nil
		}
	}
	return nil, nil
}

func (m *mockMedications) DecrementStock(_ context.Context, id uuid.UUID, quantity int) (bool, error) {
	med, ok := m.meds[id]
	if !ok || med.StockQuantity < quantity {
		return false, nil
	}
	med.StockQuantity -= quantity
	return true, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc       *Service
	repo      *mockRepo
	meds      *mockMedications
	patientID uuid.UUID
}

func newFixture() *fixture {
	repo := newMockRepo()
	meds := newMockMedications()
	patientID := uuid.New()
	patients := &mockPatients{ids: map[uuid.UUID]bool{patientID: true}}
	return &fixture{
		svc:       NewService(repo, patients, meds, passthroughTx),
		repo:      repo,
		meds:      meds,
		patientID: patientID,
	}
}

func (f *fixture) create(t *testing.T, medName string, quantity int) *Prescription {
	t.Helper()
	p, err := f.svc.Create(context.Background(), &Prescription{
		PatientID:      f.patientID,
		MedicationName: medName,
		Dosage:         "1 tablet daily",
		Quantity:       quantity,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

// -- Tests --

func TestCreateRequiresPatient(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), &Prescription{
		PatientID:      uuid.New(),
		MedicationName: "Aspirin",
		Dosage:         "1 tablet",
		Quantity:       1,
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestCreatePricesByName(t *testing.T) {
	f := newFixture()
	f.meds.add("Aspirin", 10, 2.00)

	p := f.create(t, "Aspirin", 5)
	if p.Status != StatusPending {
		t.Errorf("status = %s, want pending", p.Status)
	}
	if p.TotalAmount == nil || *p.TotalAmount != 10.00 {
		t.Errorf("totalAmount = %v, want 10.00", p.TotalAmount)
	}
}

func TestCreateUnknownMedicationLeavesTotalUnset(t *testing.T) {
	f := newFixture()

	p := f.create(t, "Obscurol", 5)
	if p.TotalAmount != nil {
		t.Errorf("totalAmount = %v, want unset", *p.TotalAmount)
	}
}

func TestFillDecrementsStockAndPrices(t *testing.T) {
	f := newFixture()
	medID := f.meds.add("Aspirin", 10, 2.00)
	p := f.create(t, "Aspirin", 5)
	p.TotalAmount = nil // simulate creation before the medication was priced
	f.repo.items[p.ID] = p

	got, err := f.svc.UpdateStatus(context.Background(), p.ID, StatusFilled)
	if err != nil {
		t.Fatalf("UpdateStatus(filled): %v", err)
	}
	if got.Status != StatusFilled {
		t.Errorf("status = %s, want filled", got.Status)
	}
	if f.meds.meds[medID].StockQuantity != 5 {
		t.Errorf("stock = %d, want 5", f.meds.meds[medID].StockQuantity)
	}
	if got.TotalAmount == nil || *got.TotalAmount != 10.00 {
		t.Errorf("totalAmount = %v, want 10.00", got.TotalAmount)
	}
}

func TestFillInsufficientStock(t *testing.T) {
	f := newFixture()
	medID := f.meds.add("Aspirin", 3, 2.00)
	p := f.create(t, "Aspirin", 5)

	_, err := f.svc.UpdateStatus(context.Background(), p.ID, StatusFilled)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindInsufficientStock {
		t.Fatalf("got %v, want insufficient stock", err)
	}
	if f.meds.meds[medID].StockQuantity != 3 {
		t.Errorf("stock changed on failed fill: %d", f.meds.meds[medID].StockQuantity)
	}
	if f.repo.items[p.ID].Status != StatusPending {
		t.Errorf("status changed on failed fill: %s", f.repo.items[p.ID].Status)
	}
}

func TestFillUnknownMedicationSkipsStock(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Obscurol", 5)

	got, err := f.svc.UpdateStatus(context.Background(), p.ID, StatusFilled)
	if err != nil {
		t.Fatalf("UpdateStatus(filled): %v", err)
	}
	if got.Status != StatusFilled {
		t.Errorf("status = %s, want filled", got.Status)
	}
	if got.TotalAmount != nil {
		t.Errorf("totalAmount = %v, want unset", *got.TotalAmount)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusFilled, true},
		{StatusFilled, StatusPickedUp, true},
		{StatusPending, StatusPickedUp, false},
		{StatusFilled, StatusPending, false},
		{StatusPickedUp, StatusFilled, false},
		{StatusPickedUp, StatusPending, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		f := newFixture()
		p := f.create(t, "Obscurol", 1)
		p.Status = tt.from
		f.repo.items[p.ID] = p

		_, err := f.svc.UpdateStatus(context.Background(), p.ID, tt.to)
		if tt.allowed && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tt.from, tt.to, err)
		}
		if !tt.allowed {
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindInvalidState {
				t.Errorf("%s -> %s: got %v, want invalid state", tt.from, tt.to, err)
			}
		}
	}
}

func TestDoubleFillRejected(t *testing.T) {
	f := newFixture()
	f.meds.add("Aspirin", 10, 2.00)
	p := f.create(t, "Aspirin", 5)

	if _, err := f.svc.UpdateStatus(context.Background(), p.ID, StatusFilled); err != nil {
		t.Fatalf("first fill: %v", err)
	}
	_, err := f.svc.UpdateStatus(context.Background(), p.ID, StatusFilled)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindInvalidState {
		t.Fatalf("second fill: got %v, want invalid state", err)
	}
}

func TestDeleteOnlyPending(t *testing.T) {
	f := newFixture()
	f.meds.add("Aspirin", 10, 2.00)
	p := f.create(t, "Aspirin", 1)

	if _, err := f.svc.UpdateStatus(context.Background(), p.ID, StatusFilled); err != nil {
		t.Fatalf("fill: %v", err)
	}

	err := f.svc.Delete(context.Background(), p.ID)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindInvalidState {
		t.Fatalf("got %v, want invalid state", err)
	}

	pending := f.create(t, "Aspirin", 1)
	if err := f.svc.Delete(context.Background(), pending.ID); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if _, ok := f.repo.items[pending.ID]; ok {
		t.Error("pending prescription not removed")
	}
}

func TestListByPatientRequiresPatient(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.ListByPatient(context.Background(), uuid.New(), "", 10, 0)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("got %v, want not found", err)
	}
}
