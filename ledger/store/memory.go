// Package store provides an in-memory CatalogStore implementation
// for tests and development.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/stock-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	warehouses map[ledger.WarehouseID]ledger.Warehouse
	products   map[ledger.ProductID]ledger.Product
	movements  []ledger.Movement

	nextWarehouse ledger.WarehouseID
	nextProduct   ledger.ProductID
	nextMovement  ledger.MovementID
}

func NewMemory() *Memory {
	return &Memory{
		warehouses:    make(map[ledger.WarehouseID]ledger.Warehouse),
		products:      make(map[ledger.ProductID]ledger.Product),
		nextWarehouse: 1,
		nextProduct:   1,
		nextMovement:  1,
	}
}

// =============================================================================
// MOVEMENT LOG (append-only)
// =============================================================================

func (m *Memory) Movements(_ context.Context, warehouseID ledger.WarehouseID) ([]ledger.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Movement
	for _, mv := range m.movements {
		if mv.WarehouseID == warehouseID {
			result = append(result, mv)
		}
	}
	return result, nil
}

func (m *Memory) MovementsForProduct(_ context.Context, warehouseID ledger.WarehouseID, productID ledger.ProductID) ([]ledger.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Movement
	for _, mv := range m.movements {
		if mv.WarehouseID == warehouseID && mv.ProductID == productID {
			result = append(result, mv)
		}
	}
	return result, nil
}

func (m *Memory) AllMovements(_ context.Context) ([]ledger.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Movement, len(m.movements))
	copy(result, m.movements)
	return result, nil
}

func (m *Memory) AppendMovement(_ context.Context, mv ledger.Movement) (ledger.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.warehouses[mv.WarehouseID]; !ok {
		return ledger.Movement{}, ledger.ErrWarehouseNotFound
	}
	if _, ok := m.products[mv.ProductID]; !ok {
		return ledger.Movement{}, ledger.ErrProductNotFound
	}

	mv.ID = m.nextMovement
	m.nextMovement++
	mv.CreatedAt = time.Now().UTC()
	m.movements = append(m.movements, mv)
	return mv, nil
}

// =============================================================================
// WAREHOUSE CATALOG
// =============================================================================

func (m *Memory) Warehouse(_ context.Context, id ledger.WarehouseID) (*ledger.Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.warehouses[id]
	if !ok {
		return nil, ledger.ErrWarehouseNotFound
	}
	return &w, nil
}

func (m *Memory) Warehouses(_ context.Context) ([]ledger.Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Warehouse, 0, len(m.warehouses))
	for id := ledger.WarehouseID(1); id < m.nextWarehouse; id++ {
		if w, ok := m.warehouses[id]; ok {
			result = append(result, w)
		}
	}
	return result, nil
}

func (m *Memory) CreateWarehouse(_ context.Context, w ledger.Warehouse) (ledger.Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w.ID = m.nextWarehouse
	m.nextWarehouse++
	m.warehouses[w.ID] = w
	return w, nil
}

func (m *Memory) UpdateWarehouse(_ context.Context, w ledger.Warehouse) (ledger.Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.warehouses[w.ID]; !ok {
		return ledger.Warehouse{}, ledger.ErrWarehouseNotFound
	}
	m.warehouses[w.ID] = w
	return w, nil
}

func (m *Memory) DeleteWarehouse(_ context.Context, id ledger.WarehouseID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.warehouses[id]; !ok {
		return ledger.ErrWarehouseNotFound
	}
	for _, mv := range m.movements {
		if mv.WarehouseID == id {
			return ledger.ErrConflict
		}
	}
	delete(m.warehouses, id)
	return nil
}

// =============================================================================
// PRODUCT CATALOG
// =============================================================================

func (m *Memory) Product(_ context.Context, id ledger.ProductID) (*ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ledger.ErrProductNotFound
	}
	return &p, nil
}

func (m *Memory) Products(_ context.Context) ([]ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Product, 0, len(m.products))
	for id := ledger.ProductID(1); id < m.nextProduct; id++ {
		if p, ok := m.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) CreateProduct(_ context.Context, p ledger.Product) (ledger.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.nextProduct
	m.nextProduct++
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) UpdateProduct(_ context.Context, p ledger.Product) (ledger.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; !ok {
		return ledger.Product{}, ledger.ErrProductNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id ledger.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ledger.ErrProductNotFound
	}
	for _, mv := range m.movements {
		if mv.ProductID == id {
			return ledger.ErrConflict
		}
	}
	delete(m.products, id)
	return nil
}
