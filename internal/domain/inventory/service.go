package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pharmd/pharmd/internal/platform/apperr"
	"github.com/pharmd/pharmd/internal/platform/cache"
)

// DefaultLowStockThreshold applies when the caller does not pass one.
const DefaultLowStockThreshold = 10

type Service struct {
	repo  Repository
	cache *cache.Cache
}

func NewService(repo Repository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

func cacheKey(id uuid.UUID) string {
	return "medication:" + id.String()
}

func (s *Service) Create(ctx context.Context, m *Medication) (*Medication, error) {
	if err := validateMedication(m.Name, m.StockQuantity, m.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Medication, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	var cached Medication
	if s.cache.GetJSON(ctx, cacheKey(id), &cached) {
		return &cached, nil
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("Medication not found")
	}
	s.cache.SetJSON(ctx, cacheKey(id), m, 0)
	return m, nil
}

// GetByName matches on exact name. A nil result without error means no
// medication carries that name; prescription pricing treats that as a
// silent skip.
func (s *Service) GetByName(ctx context.Context, name string) (*Medication, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("Medication not found")
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.StockQuantity != nil {
		m.StockQuantity = *in.StockQuantity
	}
	if in.UnitPrice != nil {
		m.UnitPrice = *in.UnitPrice
	}
	if in.Description != nil {
		m.Description = in.Description
	}
	if err := validateMedication(m.Name, m.StockQuantity, m.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cacheKey(id))
	return m, nil
}

// SetStock is an absolute overwrite with no business rule beyond quantity
// being non-negative.
func (s *Service) SetStock(ctx context.Context, id uuid.UUID, quantity int) (*StockResult, error) {
	if quantity < 0 {
		return nil, apperr.InvalidArgument("Stock quantity must not be negative")
	}
	m, err := s.repo.SetStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("Medication not found")
	}
	s.cache.Invalidate(ctx, cacheKey(id))
	return &StockResult{ID: m.ID, Name: m.Name, StockQuantity: m.StockQuantity, UpdatedAt: m.UpdatedAt}, nil
}

// Restock adds a strictly positive delta and reports both sides of the
// change.
func (s *Service) Restock(ctx context.Context, id uuid.UUID, quantity int) (*RestockResult, error) {
	if quantity <= 0 {
		return nil, apperr.InvalidArgument("Quantity must be greater than 0")
	}
	m, err := s.repo.AddStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("Medication not found")
	}
	s.cache.Invalidate(ctx, cacheKey(id))
	return &RestockResult{
		ID:            m.ID,
		Name:          m.Name,
		PreviousStock: m.StockQuantity - quantity,
		NewStock:      m.StockQuantity,
		AddedQuantity: quantity,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// DecrementStock consumes stock for fulfillment. It reports false when the
// remaining stock does not cover quantity.
func (s *Service) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	ok, err := s.repo.DecrementStock(ctx, id, quantity)
	if err != nil {
		return false, err
	}
	if ok {
		s.cache.Invalidate(ctx, cacheKey(id))
	}
	return ok, nil
}

func (s *Service) ListLowStock(ctx context.Context, threshold, limit, offset int) ([]*Medication, int, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.repo.ListLowStock(ctx, threshold, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return apperr.NotFound("Medication not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cacheKey(id))
	return nil
}

func validateMedication(name string, stock int, price float64) error {
	var details []apperr.FieldError
	if len(strings.TrimSpace(name)) < 2 {
		details = append(details, apperr.FieldError{Field: "name", Message: "name must be at least 2 characters"})
	}
	if stock < 0 {
		details = append(details, apperr.FieldError{Field: "stockQuantity", Message: "stockQuantity must not be negative"})
	}
	if price < 0 {
		details = append(details, apperr.FieldError{Field: "unitPrice", Message: "unitPrice must not be negative"})
	}
	if len(details) > 0 {
		return apperr.Validation(details...)
	}
	return nil
}
