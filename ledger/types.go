/*
Package ledger provides the core stock ledger engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking
  warehouse inventory as an append-only log of stock movements. Stock
  levels and capacity figures are never stored; they are derived by
  replaying the movement log.

KEY CONCEPTS IN THIS FILE (types.go):
  - Movement: An immutable ledger entry recording an import or export
  - Warehouse/Product: Catalog records referenced by movements
  - Date: The calendar day a movement takes effect (not insertion time)
  - Typed integer IDs to keep warehouse/product/movement ids apart

DESIGN PRINCIPLES:
  1. Immutability: Movements are never updated or deleted
  2. Precision: Uses decimal.Decimal so aggregation over long movement
     histories carries no binary floating-point error
  3. Derivation: Stock and occupied capacity are computed from the log,
     never maintained as mutable counters

SEE ALSO:
  - snapshot.go: Aggregation over a fixed set of ledger rows
  - rules.go: Pre-commit validation of prospective movements
  - coordinator.go: Per-warehouse serialization of validate-then-append
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WarehouseID int64
type ProductID int64
type MovementID int64

// =============================================================================
// CATALOG RECORDS
// =============================================================================

// Warehouse is a storage location with a fixed total capacity.
// Capacity is expressed in the same unit as Product.SizePerUnit.
type Warehouse struct {
	ID       WarehouseID
	Name     string
	Capacity decimal.Decimal
}

// Product is a stock-keeping unit. SizePerUnit is the space one unit
// occupies; occupied-capacity figures always use the current value, so
// editing a product's size retroactively changes historical figures.
type Product struct {
	ID          ProductID
	Name        string
	SizePerUnit decimal.Decimal
	Hazardous   bool
}

// =============================================================================
// MOVEMENT - Atomic change to warehouse stock
// =============================================================================

type MovementKind string

const (
	KindImport MovementKind = "import" // stock enters the warehouse
	KindExport MovementKind = "export" // stock leaves the warehouse
)

// Valid reports whether k is a known movement kind.
func (k MovementKind) Valid() bool {
	return k == KindImport || k == KindExport
}

// Movement is one immutable entry in the append-only stock ledger.
// ID is assigned by the store on append and is monotonic, so it doubles
// as the creation-order tie-breaker.
type Movement struct {
	ID          MovementID
	WarehouseID WarehouseID
	ProductID   ProductID
	Quantity    decimal.Decimal // always positive; Kind carries the sign
	Kind        MovementKind
	Date        Date // effective calendar date, caller supplied
	CreatedAt   time.Time
}

// SignedQuantity returns +Quantity for imports and -Quantity for exports.
func (m Movement) SignedQuantity() decimal.Decimal {
	if m.Kind == KindExport {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// =============================================================================
// DATE - Calendar day, no clock component
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }
func (d Date) IsZero() bool           { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// MustDecimal parses s as a decimal, returning zero on malformed input.
// For literals in wiring and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
