package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/stock-engine/ledger"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func mv(wh ledger.WarehouseID, p ledger.ProductID, qty string, kind ledger.MovementKind) ledger.Movement {
	return ledger.Movement{
		WarehouseID: wh,
		ProductID:   p,
		Quantity:    ledger.MustDecimal(qty),
		Kind:        kind,
	}
}

func product(id ledger.ProductID, size string, hazardous bool) ledger.Product {
	return ledger.Product{
		ID:          id,
		Name:        "product",
		SizePerUnit: ledger.MustDecimal(size),
		Hazardous:   hazardous,
	}
}

// =============================================================================
// STOCK AGGREGATION TESTS
// =============================================================================

func TestSnapshot_CurrentStock_SumsSignedQuantities(t *testing.T) {
	// GIVEN: imports of 100 and 50, export of 30 for the same product
	// WHEN: computing current stock
	// THEN: stock is 100 + 50 - 30 = 120

	snap := ledger.NewSnapshot(1, []ledger.Movement{
		mv(1, 1, "100", ledger.KindImport),
		mv(1, 1, "50", ledger.KindImport),
		mv(1, 1, "30", ledger.KindExport),
	}, []ledger.Product{product(1, "1", false)})

	assert.True(t, snap.CurrentStock(1).Equal(ledger.MustDecimal("120")))
}

func TestSnapshot_CurrentStock_UnknownProductIsZero(t *testing.T) {
	snap := ledger.NewSnapshot(1, nil, nil)
	assert.True(t, snap.CurrentStock(99).IsZero())
}

func TestSnapshot_CurrentStock_DecimalQuantitiesExact(t *testing.T) {
	// GIVEN: ten imports of 0.1 units
	// THEN: stock is exactly 1, not 0.9999999999999999

	var movements []ledger.Movement
	for i := 0; i < 10; i++ {
		movements = append(movements, mv(1, 1, "0.1", ledger.KindImport))
	}
	snap := ledger.NewSnapshot(1, movements, []ledger.Product{product(1, "1", false)})

	assert.True(t, snap.CurrentStock(1).Equal(ledger.MustDecimal("1")),
		"decimal sum must be exact: got %v", snap.CurrentStock(1))
}

func TestSnapshot_CurrentStock_Recompute_Idempotent(t *testing.T) {
	// Recomputing over the same movements yields the same figure.
	movements := []ledger.Movement{
		mv(1, 1, "7.5", ledger.KindImport),
		mv(1, 1, "2.25", ledger.KindExport),
	}
	snap := ledger.NewSnapshot(1, movements, []ledger.Product{product(1, "1", false)})

	first := snap.CurrentStock(1)
	second := snap.CurrentStock(1)
	assert.True(t, first.Equal(second))
}

// =============================================================================
// CAPACITY AGGREGATION TESTS
// =============================================================================

func TestSnapshot_OccupiedCapacity_UsesCurrentProductSize(t *testing.T) {
	// GIVEN: 10 units of a size-2 product and 5 units of a size-3 product
	// THEN: occupied space is 10*2 + 5*3 = 35

	snap := ledger.NewSnapshot(1, []ledger.Movement{
		mv(1, 1, "10", ledger.KindImport),
		mv(1, 2, "5", ledger.KindImport),
	}, []ledger.Product{
		product(1, "2", false),
		product(2, "3", false),
	})

	assert.True(t, snap.OccupiedCapacity().Equal(ledger.MustDecimal("35")))
}

func TestSnapshot_OccupiedCapacity_NegativeStockStillCounted(t *testing.T) {
	// An over-exported product contributes negative space. The figure
	// is surfaced as-is so capacity summaries expose the inconsistency.
	snap := ledger.NewSnapshot(1, []ledger.Movement{
		mv(1, 1, "5", ledger.KindImport),
		mv(1, 1, "8", ledger.KindExport),
		mv(1, 2, "10", ledger.KindImport),
	}, []ledger.Product{
		product(1, "2", false),
		product(2, "1", false),
	})

	// -3*2 + 10*1 = 4
	assert.True(t, snap.OccupiedCapacity().Equal(ledger.MustDecimal("4")))
}

func TestSnapshot_RemainingCapacity_CanGoNegative(t *testing.T) {
	// GIVEN: occupied space above the warehouse capacity (e.g. after the
	// product's size-per-unit was raised)
	// THEN: remaining is negative, not clamped to zero

	snap := ledger.NewSnapshot(1, []ledger.Movement{
		mv(1, 1, "30", ledger.KindImport),
	}, []ledger.Product{product(1, "5", false)})

	remaining := snap.RemainingCapacity(ledger.MustDecimal("100"))
	assert.True(t, remaining.Equal(ledger.MustDecimal("-50")))
}

func TestSnapshot_OccupiedCapacityExcluding(t *testing.T) {
	snap := ledger.NewSnapshot(1, []ledger.Movement{
		mv(1, 1, "10", ledger.KindImport),
		mv(1, 2, "4", ledger.KindImport),
	}, []ledger.Product{
		product(1, "2", false),
		product(2, "3", false),
	})

	assert.True(t, snap.OccupiedCapacityExcluding(1).Equal(ledger.MustDecimal("12")))
	assert.True(t, snap.OccupiedCapacityExcluding(2).Equal(ledger.MustDecimal("20")))
}

// =============================================================================
// PRESENT PRODUCTS TESTS
// =============================================================================

func TestSnapshot_PresentProducts_PositiveStockOnly(t *testing.T) {
	// GIVEN: product 1 in stock, product 2 fully exported
	// THEN: only product 1 is present

	snap := ledger.NewSnapshot(1, []ledger.Movement{
		mv(1, 1, "10", ledger.KindImport),
		mv(1, 2, "5", ledger.KindImport),
		mv(1, 2, "5", ledger.KindExport),
	}, []ledger.Product{
		product(1, "1", false),
		product(2, "1", true),
	})

	present := snap.PresentProducts()
	assert.Len(t, present, 1)
	assert.Equal(t, ledger.ProductID(1), present[0].ID)
}

func TestSnapshot_EmptyLedger(t *testing.T) {
	snap := ledger.NewSnapshot(1, nil, []ledger.Product{product(1, "2", false)})

	assert.True(t, snap.CurrentStock(1).IsZero())
	assert.True(t, snap.OccupiedCapacity().IsZero())
	assert.Empty(t, snap.PresentProducts())
}

// =============================================================================
// REQUIRED SPACE
// =============================================================================

func TestRequiredSpace(t *testing.T) {
	p := product(1, "2.5", false)
	assert.True(t, ledger.RequiredSpace(p, ledger.MustDecimal("4")).Equal(ledger.MustDecimal("10")))
}
