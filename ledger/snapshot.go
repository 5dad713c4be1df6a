/*
snapshot.go - Aggregation over a fixed set of ledger rows

PURPOSE:
  Computes current stock, occupied capacity, and remaining capacity from
  a snapshot of the movement log. This is the central derivation that
  answers "what is in this warehouse right now?"

KEY INSIGHT:
  A Snapshot is immutable once built. Every rule in the validation
  pipeline reads the same snapshot, so the figures it produces are
  mutually consistent even while other writers append to the ledger.

WHY RECOMPUTE INSTEAD OF A RUNNING BALANCE?
  - Auditability: any figure can be explained by replaying the log
  - Correctness: no mutable counter to drift out of sync
  - Simplicity: size-per-unit edits are picked up automatically, since
    space is always resolved against the current product record

SEE ALSO:
  - rules.go: Uses these aggregates to accept or reject a movement
  - coordinator.go: Builds snapshots under the per-warehouse lock
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// SNAPSHOT - Ledger rows visible to one validation pass
// =============================================================================

// Snapshot holds the movements of one warehouse and the current product
// catalog, fixed for the duration of one aggregation/validation pass.
// All methods are pure; a Snapshot holds no mutable state.
type Snapshot struct {
	WarehouseID WarehouseID
	Movements   []Movement
	Products    map[ProductID]Product
}

// NewSnapshot builds a snapshot from ledger rows and catalog records.
func NewSnapshot(warehouseID WarehouseID, movements []Movement, products []Product) *Snapshot {
	byID := make(map[ProductID]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Snapshot{WarehouseID: warehouseID, Movements: movements, Products: byID}
}

// CurrentStock returns the cumulative signed quantity for one product:
// imports contribute +quantity, exports -quantity.
func (s *Snapshot) CurrentStock(productID ProductID) decimal.Decimal {
	stock := decimal.Zero
	for _, m := range s.Movements {
		if m.ProductID == productID {
			stock = stock.Add(m.SignedQuantity())
		}
	}
	return stock
}

// OccupiedCapacity returns the space in use: the sum over all movements
// of signed quantity times the product's CURRENT size-per-unit.
func (s *Snapshot) OccupiedCapacity() decimal.Decimal {
	return s.occupied(func(ProductID) bool { return true })
}

// OccupiedCapacityExcluding is OccupiedCapacity restricted to products
// other than the given one. Used by the hazard-conflict rule to ask
// "does the warehouse hold anything else?".
func (s *Snapshot) OccupiedCapacityExcluding(productID ProductID) decimal.Decimal {
	return s.occupied(func(id ProductID) bool { return id != productID })
}

func (s *Snapshot) occupied(include func(ProductID) bool) decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.Movements {
		if !include(m.ProductID) {
			continue
		}
		p, ok := s.Products[m.ProductID]
		if !ok {
			// Product record gone; its movements occupy unknown space.
			// Treat size as zero so the inconsistency shows up in stock
			// figures rather than being silently invented here.
			continue
		}
		total = total.Add(m.SignedQuantity().Mul(p.SizePerUnit))
	}
	return total
}

// RemainingCapacity returns capacity minus occupied space. The result
// may be negative when the ledger is inconsistent with the warehouse's
// current capacity; callers see the negative figure, it is not clamped.
func (s *Snapshot) RemainingCapacity(capacity decimal.Decimal) decimal.Decimal {
	return capacity.Sub(s.OccupiedCapacity())
}

// PresentProducts returns the products with positive net stock in the
// snapshot. Hazard compatibility is derived from these contents.
func (s *Snapshot) PresentProducts() []Product {
	stock := make(map[ProductID]decimal.Decimal)
	for _, m := range s.Movements {
		stock[m.ProductID] = stock[m.ProductID].Add(m.SignedQuantity())
	}

	var present []Product
	for id, qty := range stock {
		if !qty.IsPositive() {
			continue
		}
		if p, ok := s.Products[id]; ok {
			present = append(present, p)
		}
	}
	return present
}

// RequiredSpace returns quantity times the product's size-per-unit.
// Pure function, no ledger access.
func RequiredSpace(p Product, quantity decimal.Decimal) decimal.Decimal {
	return quantity.Mul(p.SizePerUnit)
}
