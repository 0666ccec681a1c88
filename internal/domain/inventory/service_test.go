package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pharmd/pharmd/internal/platform/apperr"
	"github.com/pharmd/pharmd/internal/platform/cache"
)

// -- Mock --

type mockRepo struct {
	items map[uuid.UUID]*Medication
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Medication)}
}

func (m *mockRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	m.items[med.ID] = med
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	return m.items[id], nil
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*Medication, error) {
	for _, med := range m.items {
		if med.Name == name {
			return med, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) Update(_ context.Context, med *Medication) error {
	med.UpdatedAt = time.Now()
	m.items[med.ID] = med
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, search string, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.items {
		if search != "" && !strings.Contains(strings.ToLower(med.Name), strings.ToLower(search)) {
			continue
		}
		result = append(result, med)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, len(result), nil
}

func (m *mockRepo) ListLowStock(_ context.Context, threshold, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.items {
		if med.StockQuantity < threshold {
			result = append(result, med)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StockQuantity < result[j].StockQuantity })
	return result, len(result), nil
}

func (m *mockRepo) SetStock(_ context.Context, id uuid.UUID, quantity int) (*Medication, error) {
	med, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	med.StockQuantity = quantity
	med.UpdatedAt = time.Now()
	return med, nil
}

func (m *mockRepo) AddStock(_ context.Context, id uuid.UUID, delta int) (*Medication, error) {
	med, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	med.StockQuantity += delta
	med.UpdatedAt = time.Now()
	return med, nil
}

func (m *mockRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int) (bool, error) {
	med, ok := m.items[id]
	if !ok || med.StockQuantity < quantity {
		return false, nil
	}
	med.StockQuantity -= quantity
	return true, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, cache.New(nil, zerolog.Nop())), repo
}

func seed(t *testing.T, svc *Service, name string, stock int, price float64) *Medication {
	t.Helper()
	m, err := svc.Create(context.Background(), &Medication{Name: name, StockQuantity: stock, UnitPrice: price})
	if err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return m
}

// -- Tests --

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name string
		med  Medication
	}{
		{"short name", Medication{Name: "A", StockQuantity: 1, UnitPrice: 1}},
		{"negative stock", Medication{Name: "Aspirin", StockQuantity: -1, UnitPrice: 1}},
		{"negative price", Medication{Name: "Aspirin", StockQuantity: 1, UnitPrice: -0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tt.med)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestRestock(t *testing.T) {
	svc, _ := newTestService()
	m := seed(t, svc, "Aspirin", 5, 1.50)

	result, err := svc.Restock(context.Background(), m.ID, 20)
	if err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if result.PreviousStock != 5 || result.NewStock != 25 || result.AddedQuantity != 20 {
		t.Errorf("got prev=%d new=%d added=%d, want 5/25/20",
			result.PreviousStock, result.NewStock, result.AddedQuantity)
	}
}

func TestRestockRejectsNonPositive(t *testing.T) {
	svc, _ := newTestService()
	m := seed(t, svc, "Aspirin", 5, 1.50)

	for _, qty := range []int{0, -5} {
		_, err := svc.Restock(context.Background(), m.ID, qty)
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Kind != apperr.KindInvalidArgument {
			t.Fatalf("Restock(%d): got %v, want invalid argument", qty, err)
		}
	}
}

func TestSetStockAbsolute(t *testing.T) {
	svc, _ := newTestService()
	m := seed(t, svc, "Aspirin", 5, 1.50)

	result, err := svc.SetStock(context.Background(), m.ID, 0)
	if err != nil {
		t.Fatalf("SetStock: %v", err)
	}
	if result.StockQuantity != 0 {
		t.Errorf("stock = %d, want 0", result.StockQuantity)
	}

	if _, err := svc.SetStock(context.Background(), m.ID, -1); err == nil {
		t.Error("negative absolute stock accepted")
	}
}

func TestDecrementStock(t *testing.T) {
	svc, repo := newTestService()
	m := seed(t, svc, "Aspirin", 10, 1.50)

	ok, err := svc.DecrementStock(context.Background(), m.ID, 4)
	if err != nil || !ok {
		t.Fatalf("DecrementStock = (%v, %v), want applied", ok, err)
	}
	if repo.items[m.ID].StockQuantity != 6 {
		t.Errorf("stock = %d, want 6", repo.items[m.ID].StockQuantity)
	}

	ok, err = svc.DecrementStock(context.Background(), m.ID, 7)
	if err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if ok {
		t.Error("decrement beyond remaining stock applied")
	}
	if repo.items[m.ID].StockQuantity != 6 {
		t.Errorf("stock changed on failed decrement: %d", repo.items[m.ID].StockQuantity)
	}
}

func TestListLowStock(t *testing.T) {
	svc, _ := newTestService()
	seed(t, svc, "Aspirin", 2, 1.50)
	seed(t, svc, "Ibuprofen", 8, 2.00)
	seed(t, svc, "Paracetamol", 50, 0.90)

	items, total, err := svc.ListLowStock(context.Background(), 10, 10, 0)
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if items[0].Name != "Aspirin" || items[1].Name != "Ibuprofen" {
		t.Errorf("not ordered by stock ascending: %s, %s", items[0].Name, items[1].Name)
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), uuid.New())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestGetByNameMissingIsNotError(t *testing.T) {
	svc, _ := newTestService()

	m, err := svc.GetByName(context.Background(), "Unknown")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if m != nil {
		t.Errorf("got %+v, want nil", m)
	}
}
