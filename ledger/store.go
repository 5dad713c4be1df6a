/*
store.go - Persistence interface for movements and catalog records

PURPOSE:
  Defines the interface between the ledger engine and the database.
  The movement log is append-only; warehouses and products are ordinary
  mutable catalog records.

APPEND-ONLY CONTRACT:
  The movement side of the Store exposes exactly two writes worth of
  surface: AppendMovement, and nothing else. No Update, no Delete.
  Corrections happen by appending a compensating movement.

IMPLEMENTATIONS:
  - store/sqlite: durable SQLite store with schema auto-migration
  - ledger/store: in-memory store for tests and dev
*/
package ledger

import "context"

// =============================================================================
// STORE - Movement log plus catalog reads (what the engine consumes)
// =============================================================================

// Store is the narrow persistence contract the engine requires.
//
// Movement reads return rows in creation order (ascending id) as of a
// call-time snapshot. AppendMovement assigns ID and CreatedAt, checks
// that the referenced warehouse and product exist, and returns the
// stored movement.
type Store interface {
	// Movements returns all movements for a warehouse, in creation order.
	Movements(ctx context.Context, warehouseID WarehouseID) ([]Movement, error)

	// MovementsForProduct narrows Movements to a single product.
	MovementsForProduct(ctx context.Context, warehouseID WarehouseID, productID ProductID) ([]Movement, error)

	// AppendMovement durably records a new movement. This is the ONLY
	// write operation on the movement log. Fails with ErrWarehouseNotFound
	// or ErrProductNotFound if a reference is missing, ErrConflict if the
	// backing store rejects the row.
	AppendMovement(ctx context.Context, m Movement) (Movement, error)

	// Warehouse returns a warehouse by id, or ErrWarehouseNotFound.
	Warehouse(ctx context.Context, id WarehouseID) (*Warehouse, error)

	// Product returns a product by id, or ErrProductNotFound.
	Product(ctx context.Context, id ProductID) (*Product, error)

	// Products returns the full product catalog. Snapshots resolve
	// size-per-unit and hazard flags against these current records.
	Products(ctx context.Context) ([]Product, error)
}

// =============================================================================
// CATALOG STORE - Warehouse/product lifecycle (consumed by the API layer)
// =============================================================================

// CatalogStore extends Store with the administrative operations the
// service layer exposes. The engine itself never mutates the catalog.
//
// DeleteWarehouse and DeleteProduct fail with ErrConflict while any
// movement references the record; the ledger must never dangle.
type CatalogStore interface {
	Store

	CreateWarehouse(ctx context.Context, w Warehouse) (Warehouse, error)
	UpdateWarehouse(ctx context.Context, w Warehouse) (Warehouse, error)
	DeleteWarehouse(ctx context.Context, id WarehouseID) error
	Warehouses(ctx context.Context) ([]Warehouse, error)

	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) (Product, error)
	DeleteProduct(ctx context.Context, id ProductID) error

	// AllMovements returns the complete ledger in creation order.
	AllMovements(ctx context.Context) ([]Movement, error)
}
