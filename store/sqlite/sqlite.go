/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements ledger.CatalogStore using SQLite. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The movement log is append-only:
  - No UPDATE statements on stock_movements
  - No DELETE statements on stock_movements
  Warehouses and products are ordinary mutable catalog rows, but cannot
  be deleted while movements reference them.

KEY TABLES:
  warehouses:       Catalog of storage locations with total capacity
  products:         Catalog of SKUs with size-per-unit and hazard flag
  stock_movements:  Immutable ledger of imports/exports

DECIMAL COLUMNS:
  Quantities, sizes, and capacities are stored as TEXT and parsed with
  shopspring/decimal. REAL columns would reintroduce the floating-point
  rounding this system exists to avoid.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/stock.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/stock-engine/ledger"
)

// Store implements ledger.CatalogStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS warehouses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		capacity TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		size_per_unit TEXT NOT NULL,
		hazardous BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- Stock movements (append-only ledger). id doubles as creation order.
	CREATE TABLE IF NOT EXISTS stock_movements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		warehouse_id INTEGER NOT NULL REFERENCES warehouses(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('import', 'export')),
		moved_on TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Snapshot reads (hot path)
	CREATE INDEX IF NOT EXISTS idx_movements_warehouse
		ON stock_movements(warehouse_id, id);
	CREATE INDEX IF NOT EXISTS idx_movements_warehouse_product
		ON stock_movements(warehouse_id, product_id, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// MOVEMENT LOG (ledger.Store interface)
// =============================================================================

// AppendMovement adds a movement to the ledger.
func (s *Store) AppendMovement(ctx context.Context, m ledger.Movement) (ledger.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Explicit existence checks so missing references surface as the
	// not-found sentinels rather than an opaque FK failure.
	if ok, err := s.rowExists(ctx, "warehouses", int64(m.WarehouseID)); err != nil {
		return ledger.Movement{}, err
	} else if !ok {
		return ledger.Movement{}, ledger.ErrWarehouseNotFound
	}
	if ok, err := s.rowExists(ctx, "products", int64(m.ProductID)); err != nil {
		return ledger.Movement{}, err
	} else if !ok {
		return ledger.Movement{}, ledger.ErrProductNotFound
	}

	createdAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_movements (warehouse_id, product_id, quantity, kind, moved_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.WarehouseID,
		m.ProductID,
		m.Quantity.String(),
		string(m.Kind),
		m.Date.String(),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintError(err) {
			return ledger.Movement{}, fmt.Errorf("%w: %v", ledger.ErrConflict, err)
		}
		return ledger.Movement{}, fmt.Errorf("failed to append movement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Movement{}, fmt.Errorf("failed to read movement id: %w", err)
	}
	m.ID = ledger.MovementID(id)
	m.CreatedAt = createdAt
	return m, nil
}

// Movements returns all movements for a warehouse, in creation order.
func (s *Store) Movements(ctx context.Context, warehouseID ledger.WarehouseID) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, warehouse_id, product_id, quantity, kind, moved_on, created_at
		FROM stock_movements
		WHERE warehouse_id = ?
		ORDER BY id ASC
	`
	return s.queryMovements(ctx, query, warehouseID)
}

// MovementsForProduct narrows Movements to a single product.
func (s *Store) MovementsForProduct(ctx context.Context, warehouseID ledger.WarehouseID, productID ledger.ProductID) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, warehouse_id, product_id, quantity, kind, moved_on, created_at
		FROM stock_movements
		WHERE warehouse_id = ? AND product_id = ?
		ORDER BY id ASC
	`
	return s.queryMovements(ctx, query, warehouseID, productID)
}

// AllMovements returns the complete ledger in creation order.
func (s *Store) AllMovements(ctx context.Context) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, warehouse_id, product_id, quantity, kind, moved_on, created_at
		FROM stock_movements
		ORDER BY id ASC
	`
	return s.queryMovements(ctx, query)
}

func (s *Store) queryMovements(ctx context.Context, query string, args ...any) ([]ledger.Movement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []ledger.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func scanMovement(rows *sql.Rows) (ledger.Movement, error) {
	var (
		m         ledger.Movement
		quantity  string
		kind      string
		movedOn   string
		createdAt string
	)

	err := rows.Scan(&m.ID, &m.WarehouseID, &m.ProductID, &quantity, &kind, &movedOn, &createdAt)
	if err != nil {
		return m, fmt.Errorf("failed to scan movement: %w", err)
	}

	m.Quantity = ledger.MustDecimal(quantity)
	m.Kind = ledger.MovementKind(kind)
	if d, err := ledger.ParseDate(movedOn); err == nil {
		m.Date = d
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return m, nil
}

// =============================================================================
// WAREHOUSE CATALOG
// =============================================================================

// CreateWarehouse inserts a warehouse and returns it with its assigned id.
func (s *Store) CreateWarehouse(ctx context.Context, w ledger.Warehouse) (ledger.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO warehouses (name, capacity) VALUES (?, ?)",
		w.Name, w.Capacity.String(),
	)
	if err != nil {
		return ledger.Warehouse{}, fmt.Errorf("failed to create warehouse: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Warehouse{}, err
	}
	w.ID = ledger.WarehouseID(id)
	return w, nil
}

// UpdateWarehouse replaces a warehouse's name and capacity.
func (s *Store) UpdateWarehouse(ctx context.Context, w ledger.Warehouse) (ledger.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE warehouses SET name = ?, capacity = ? WHERE id = ?",
		w.Name, w.Capacity.String(), w.ID,
	)
	if err != nil {
		return ledger.Warehouse{}, fmt.Errorf("failed to update warehouse: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.Warehouse{}, ledger.ErrWarehouseNotFound
	}
	return w, nil
}

// DeleteWarehouse removes a warehouse. Fails with ErrConflict while
// movements reference it; the ledger must never dangle.
func (s *Store) DeleteWarehouse(ctx context.Context, id ledger.WarehouseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stock_movements WHERE warehouse_id = ?", id,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: warehouse %d has %d movements", ledger.ErrConflict, id, count)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM warehouses WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrWarehouseNotFound
	}
	return nil
}

// Warehouse retrieves a warehouse by id.
func (s *Store) Warehouse(ctx context.Context, id ledger.WarehouseID) (*ledger.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		w        ledger.Warehouse
		capacity string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, capacity FROM warehouses WHERE id = ?", id,
	).Scan(&w.ID, &w.Name, &capacity)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrWarehouseNotFound
	}
	if err != nil {
		return nil, err
	}
	w.Capacity = ledger.MustDecimal(capacity)
	return &w, nil
}

// Warehouses returns all warehouses ordered by id.
func (s *Store) Warehouses(ctx context.Context) ([]ledger.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, capacity FROM warehouses ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []ledger.Warehouse
	for rows.Next() {
		var (
			w        ledger.Warehouse
			capacity string
		)
		if err := rows.Scan(&w.ID, &w.Name, &capacity); err != nil {
			return nil, err
		}
		w.Capacity = ledger.MustDecimal(capacity)
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

// =============================================================================
// PRODUCT CATALOG
// =============================================================================

// CreateProduct inserts a product and returns it with its assigned id.
func (s *Store) CreateProduct(ctx context.Context, p ledger.Product) (ledger.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO products (name, size_per_unit, hazardous) VALUES (?, ?, ?)",
		p.Name, p.SizePerUnit.String(), p.Hazardous,
	)
	if err != nil {
		return ledger.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Product{}, err
	}
	p.ID = ledger.ProductID(id)
	return p, nil
}

// UpdateProduct replaces a product's name, size, and hazard flag.
func (s *Store) UpdateProduct(ctx context.Context, p ledger.Product) (ledger.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET name = ?, size_per_unit = ?, hazardous = ? WHERE id = ?",
		p.Name, p.SizePerUnit.String(), p.Hazardous, p.ID,
	)
	if err != nil {
		return ledger.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.Product{}, ledger.ErrProductNotFound
	}
	return p, nil
}

// DeleteProduct removes a product. Fails with ErrConflict while
// movements reference it.
func (s *Store) DeleteProduct(ctx context.Context, id ledger.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stock_movements WHERE product_id = ?", id,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: product %d has %d movements", ledger.ErrConflict, id, count)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrProductNotFound
	}
	return nil
}

// Product retrieves a product by id.
func (s *Store) Product(ctx context.Context, id ledger.ProductID) (*ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p    ledger.Product
		size string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, size_per_unit, hazardous FROM products WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &size, &p.Hazardous)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	p.SizePerUnit = ledger.MustDecimal(size)
	return &p, nil
}

// Products returns all products ordered by id.
func (s *Store) Products(ctx context.Context) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, size_per_unit, hazardous FROM products ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		var (
			p    ledger.Product
			size string
		)
		if err := rows.Scan(&p.ID, &p.Name, &size, &p.Hazardous); err != nil {
			return nil, err
		}
		p.SizePerUnit = ledger.MustDecimal(size)
		products = append(products, p)
	}
	return products, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"stock_movements", "products", "warehouses"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) rowExists(ctx context.Context, table string, id int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE id = ?", id,
	).Scan(&count)
	return count > 0, err
}

func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed")
}
