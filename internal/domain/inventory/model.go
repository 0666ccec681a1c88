package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Medication maps to the medications table. Stock is guarded at the point
// of decrement and never goes negative.
type Medication struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	StockQuantity int       `db:"stock_quantity" json:"stockQuantity"`
	UnitPrice     float64   `db:"unit_price" json:"unitPrice"`
	Description   *string   `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// UpdateInput holds the mutable medication fields; nil means unchanged.
type UpdateInput struct {
	Name          *string  `json:"name"`
	StockQuantity *int     `json:"stockQuantity"`
	UnitPrice     *float64 `json:"unitPrice"`
	Description   *string  `json:"description"`
}

// StockResult is returned by the absolute stock update.
type StockResult struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	StockQuantity int       `json:"stockQuantity"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RestockResult reports a relative stock increase.
type RestockResult struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	AddedQuantity int       `json:"addedQuantity"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LowStockMeta accompanies the low-stock listing.
type LowStockMeta struct {
	Threshold     int `json:"threshold"`
	TotalLowStock int `json:"totalLowStock"`
}
