package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-engine/ledger"
	"github.com/warp/stock-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createWarehouse(t *testing.T, store *sqlite.Store, name, capacity string) ledger.Warehouse {
	t.Helper()
	wh, err := store.CreateWarehouse(context.Background(), ledger.Warehouse{
		Name:     name,
		Capacity: ledger.MustDecimal(capacity),
	})
	require.NoError(t, err)
	return wh
}

func createProduct(t *testing.T, store *sqlite.Store, name, size string, hazardous bool) ledger.Product {
	t.Helper()
	p, err := store.CreateProduct(context.Background(), ledger.Product{
		Name:        name,
		SizePerUnit: ledger.MustDecimal(size),
		Hazardous:   hazardous,
	})
	require.NoError(t, err)
	return p
}

func appendImport(t *testing.T, store *sqlite.Store, wh ledger.WarehouseID, p ledger.ProductID, qty string) ledger.Movement {
	t.Helper()
	m, err := store.AppendMovement(context.Background(), ledger.Movement{
		WarehouseID: wh,
		ProductID:   p,
		Quantity:    ledger.MustDecimal(qty),
		Kind:        ledger.KindImport,
		Date:        ledger.Today(),
	})
	require.NoError(t, err)
	return m
}

// =============================================================================
// WAREHOUSE CATALOG TESTS
// =============================================================================

func TestStore_WarehouseCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	wh := createWarehouse(t, store, "North Depot", "250.5")
	assert.NotZero(t, wh.ID)

	got, err := store.Warehouse(ctx, wh.ID)
	require.NoError(t, err)
	assert.Equal(t, "North Depot", got.Name)
	assert.True(t, got.Capacity.Equal(ledger.MustDecimal("250.5")), "capacity must round-trip exactly")

	wh.Capacity = ledger.MustDecimal("300")
	_, err = store.UpdateWarehouse(ctx, wh)
	require.NoError(t, err)

	got, err = store.Warehouse(ctx, wh.ID)
	require.NoError(t, err)
	assert.True(t, got.Capacity.Equal(ledger.MustDecimal("300")))

	require.NoError(t, store.DeleteWarehouse(ctx, wh.ID))
	_, err = store.Warehouse(ctx, wh.ID)
	assert.ErrorIs(t, err, ledger.ErrWarehouseNotFound)
}

func TestStore_Warehouse_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Warehouse(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrWarehouseNotFound)

	_, err = store.UpdateWarehouse(ctx, ledger.Warehouse{
		ID: 999, Name: "ghost", Capacity: ledger.MustDecimal("1"),
	})
	assert.ErrorIs(t, err, ledger.ErrWarehouseNotFound)

	assert.ErrorIs(t, store.DeleteWarehouse(ctx, 999), ledger.ErrWarehouseNotFound)
}

func TestStore_Warehouses_OrderedByID(t *testing.T) {
	store := newTestStore(t)

	a := createWarehouse(t, store, "A", "10")
	b := createWarehouse(t, store, "B", "20")

	warehouses, err := store.Warehouses(context.Background())
	require.NoError(t, err)
	require.Len(t, warehouses, 2)
	assert.Equal(t, a.ID, warehouses[0].ID)
	assert.Equal(t, b.ID, warehouses[1].ID)
}

// =============================================================================
// PRODUCT CATALOG TESTS
// =============================================================================

func TestStore_ProductCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createProduct(t, store, "Acid Drum", "2.75", true)
	assert.NotZero(t, p.ID)

	got, err := store.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acid Drum", got.Name)
	assert.True(t, got.SizePerUnit.Equal(ledger.MustDecimal("2.75")))
	assert.True(t, got.Hazardous)

	p.Hazardous = false
	p.SizePerUnit = ledger.MustDecimal("3")
	_, err = store.UpdateProduct(ctx, p)
	require.NoError(t, err)

	got, err = store.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Hazardous)

	require.NoError(t, store.DeleteProduct(ctx, p.ID))
	_, err = store.Product(ctx, p.ID)
	assert.ErrorIs(t, err, ledger.ErrProductNotFound)
}

// =============================================================================
// MOVEMENT LOG TESTS
// =============================================================================

func TestStore_AppendMovement_AssignsSequentialIDs(t *testing.T) {
	store := newTestStore(t)
	wh := createWarehouse(t, store, "W", "100")
	p := createProduct(t, store, "P", "1", false)

	m1 := appendImport(t, store, wh.ID, p.ID, "10")
	m2 := appendImport(t, store, wh.ID, p.ID, "20")

	assert.Greater(t, int64(m2.ID), int64(m1.ID), "ids carry creation order")
	assert.False(t, m1.CreatedAt.IsZero())
}

func TestStore_AppendMovement_UnknownReferences(t *testing.T) {
	store := newTestStore(t)
	wh := createWarehouse(t, store, "W", "100")
	p := createProduct(t, store, "P", "1", false)

	_, err := store.AppendMovement(context.Background(), ledger.Movement{
		WarehouseID: 999, ProductID: p.ID,
		Quantity: ledger.MustDecimal("1"), Kind: ledger.KindImport, Date: ledger.Today(),
	})
	assert.ErrorIs(t, err, ledger.ErrWarehouseNotFound)

	_, err = store.AppendMovement(context.Background(), ledger.Movement{
		WarehouseID: wh.ID, ProductID: 999,
		Quantity: ledger.MustDecimal("1"), Kind: ledger.KindImport, Date: ledger.Today(),
	})
	assert.ErrorIs(t, err, ledger.ErrProductNotFound)
}

func TestStore_Movements_FilteredAndOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	whA := createWarehouse(t, store, "A", "100")
	whB := createWarehouse(t, store, "B", "100")
	p := createProduct(t, store, "P", "1", false)

	appendImport(t, store, whA.ID, p.ID, "10")
	appendImport(t, store, whB.ID, p.ID, "20")
	appendImport(t, store, whA.ID, p.ID, "30")

	forA, err := store.Movements(ctx, whA.ID)
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.True(t, forA[0].Quantity.Equal(ledger.MustDecimal("10")))
	assert.True(t, forA[1].Quantity.Equal(ledger.MustDecimal("30")))

	all, err := store.AllMovements(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_MovementsForProduct(t *testing.T) {
	store := newTestStore(t)
	wh := createWarehouse(t, store, "W", "100")
	p1 := createProduct(t, store, "P1", "1", false)
	p2 := createProduct(t, store, "P2", "1", false)

	appendImport(t, store, wh.ID, p1.ID, "10")
	appendImport(t, store, wh.ID, p2.ID, "20")

	movements, err := store.MovementsForProduct(context.Background(), wh.ID, p1.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, p1.ID, movements[0].ProductID)
}

func TestStore_Movement_DecimalRoundTrip(t *testing.T) {
	// Quantities are stored as TEXT; fractional values must come back
	// exactly as written.
	store := newTestStore(t)
	wh := createWarehouse(t, store, "W", "100")
	p := createProduct(t, store, "P", "0.125", false)

	appendImport(t, store, wh.ID, p.ID, "3.333")

	movements, err := store.Movements(context.Background(), wh.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Quantity.Equal(ledger.MustDecimal("3.333")))
	assert.Equal(t, ledger.KindImport, movements[0].Kind)
}

// =============================================================================
// DELETE PROTECTION TESTS
// =============================================================================

func TestStore_Delete_BlockedWhileReferenced(t *testing.T) {
	// GIVEN: a warehouse and product with recorded movements
	// WHEN: deleting either
	// THEN: rejected with a conflict; history must stay replayable

	store := newTestStore(t)
	wh := createWarehouse(t, store, "W", "100")
	p := createProduct(t, store, "P", "1", false)
	appendImport(t, store, wh.ID, p.ID, "10")

	err := store.DeleteWarehouse(context.Background(), wh.ID)
	assert.True(t, ledger.IsConflict(err))

	err = store.DeleteProduct(context.Background(), p.ID)
	assert.True(t, ledger.IsConflict(err))
}

// =============================================================================
// RESET
// =============================================================================

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	wh := createWarehouse(t, store, "W", "100")
	p := createProduct(t, store, "P", "1", false)
	appendImport(t, store, wh.ID, p.ID, "10")

	require.NoError(t, store.Reset(ctx))

	warehouses, err := store.Warehouses(ctx)
	require.NoError(t, err)
	assert.Empty(t, warehouses)

	movements, err := store.AllMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movements)
}
