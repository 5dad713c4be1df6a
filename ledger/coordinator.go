/*
coordinator.go - Per-warehouse serialization of validate-then-append

PURPOSE:
  Commit requests arrive concurrently from independent callers. Each
  one must read a snapshot, validate against it, and append - and no
  second request for the SAME warehouse may interleave with that
  sequence, or two imports could both pass the capacity check against
  a stale remaining-capacity figure and jointly overflow the warehouse
  (the classic check-then-act race).

THE CONTRACT:
  - One token per warehouse, held across snapshot-read + validate +
    append. Movements against different warehouses never block each
    other.
  - Reads outside a commit (CurrentStock, CapacitySummary, Evaluate)
    take no token. They may observe a slightly stale figure, but no
    committed movement ever violates an invariant as computed against
    the ledger state immediately preceding it.
  - If the append fails AFTER validation passed, the store error is
    surfaced as-is and logged as an invariant-breach signal. It is
    never retried: retrying a write with stale validation would
    reintroduce the race this component exists to prevent.

SEE ALSO:
  - rules.go: The pipeline run under the token
  - store.go: The snapshot source and append target
*/
package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator serializes movement commits per warehouse and exposes the
// derived-figure queries. It holds no domain state of its own; all
// figures come from the Store on demand.
type Coordinator struct {
	store Store
	log   zerolog.Logger

	mu    sync.Mutex
	locks map[WarehouseID]*sync.Mutex
}

func NewCoordinator(store Store, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store: store,
		log:   log,
		locks: make(map[WarehouseID]*sync.Mutex),
	}
}

// lockFor returns the serialization token for a warehouse, creating it
// on first use. Tokens are never removed; the map grows with the number
// of distinct warehouses ever written, not with traffic.
func (c *Coordinator) lockFor(id WarehouseID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	return l
}

// snapshot reads a fresh, consistent view of one warehouse's ledger.
func (c *Coordinator) snapshot(ctx context.Context, warehouseID WarehouseID) (*Snapshot, error) {
	movements, err := c.store.Movements(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	products, err := c.store.Products(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(warehouseID, movements, products), nil
}

// resolve loads the current warehouse/product records for a request.
// Missing records come back nil; the pipeline turns that into the
// corresponding rejection.
func (c *Coordinator) resolve(ctx context.Context, req MovementRequest) (*Warehouse, *Product, error) {
	wh, err := c.store.Warehouse(ctx, req.WarehouseID)
	if err != nil && !IsNotFound(err) {
		return nil, nil, err
	}
	prod, err := c.store.Product(ctx, req.ProductID)
	if err != nil && !IsNotFound(err) {
		return nil, nil, err
	}
	return wh, prod, nil
}

// =============================================================================
// EXPOSED CONTRACT
// =============================================================================

// EvaluateMovement runs the validation pipeline without committing.
// Read-only and safe to call speculatively; it takes no warehouse token,
// so a concurrent commit may make the answer stale by the time it is
// read. Only input-shape and store failures are errors - a rejection is
// a normal Evaluation result.
func (c *Coordinator) EvaluateMovement(ctx context.Context, req MovementRequest) (Evaluation, error) {
	if err := req.Validate(); err != nil {
		return Evaluation{}, err
	}

	wh, prod, err := c.resolve(ctx, req)
	if err != nil {
		return Evaluation{}, err
	}
	snap, err := c.snapshot(ctx, req.WarehouseID)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluate(req, wh, prod, snap), nil
}

// CommitMovement validates req against a fresh snapshot and appends it,
// holding the warehouse's token across both steps. On acceptance the
// stored movement (with assigned id) is returned.
func (c *Coordinator) CommitMovement(ctx context.Context, req MovementRequest) (Movement, error) {
	if err := req.Validate(); err != nil {
		return Movement{}, err
	}

	lock := c.lockFor(req.WarehouseID)
	lock.Lock()
	defer lock.Unlock()

	wh, prod, err := c.resolve(ctx, req)
	if err != nil {
		return Movement{}, err
	}
	snap, err := c.snapshot(ctx, req.WarehouseID)
	if err != nil {
		return Movement{}, err
	}

	ev := Evaluate(req, wh, prod, snap)
	if !ev.Accepted {
		return Movement{}, ev.RejectionError(req)
	}

	date := req.Date
	if date.IsZero() {
		date = Today()
	}

	commitID := uuid.NewString()
	m, err := c.store.AppendMovement(ctx, Movement{
		WarehouseID: req.WarehouseID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Kind:        req.Kind,
		Date:        date,
	})
	if err != nil {
		// Validation passed and the append still failed: the snapshot
		// was stale despite the token, which means something mutated
		// the store outside this coordinator. Surface loudly.
		c.log.Error().
			Err(err).
			Str("commit_id", commitID).
			Int64("warehouse_id", int64(req.WarehouseID)).
			Int64("product_id", int64(req.ProductID)).
			Str("kind", string(req.Kind)).
			Msg("append rejected after validation passed")
		return Movement{}, err
	}

	c.log.Debug().
		Str("commit_id", commitID).
		Int64("movement_id", int64(m.ID)).
		Int64("warehouse_id", int64(m.WarehouseID)).
		Int64("product_id", int64(m.ProductID)).
		Str("kind", string(m.Kind)).
		Str("quantity", m.Quantity.String()).
		Msg("movement committed")
	return m, nil
}

// CurrentStock returns the net stock of one product in one warehouse.
func (c *Coordinator) CurrentStock(ctx context.Context, warehouseID WarehouseID, productID ProductID) (decimal.Decimal, error) {
	if _, err := c.store.Warehouse(ctx, warehouseID); err != nil {
		return decimal.Zero, err
	}
	if _, err := c.store.Product(ctx, productID); err != nil {
		return decimal.Zero, err
	}
	movements, err := c.store.MovementsForProduct(ctx, warehouseID, productID)
	if err != nil {
		return decimal.Zero, err
	}

	stock := decimal.Zero
	for _, m := range movements {
		stock = stock.Add(m.SignedQuantity())
	}
	return stock, nil
}

// CapacitySummary is the occupied/total/remaining capacity triple for
// one warehouse.
type CapacitySummary struct {
	Occupied  decimal.Decimal
	Total     decimal.Decimal
	Remaining decimal.Decimal
}

// CapacitySummary computes occupied/total/remaining capacity for one
// warehouse. Remaining may be negative; inconsistencies are surfaced,
// not hidden.
func (c *Coordinator) CapacitySummary(ctx context.Context, warehouseID WarehouseID) (CapacitySummary, error) {
	wh, err := c.store.Warehouse(ctx, warehouseID)
	if err != nil {
		return CapacitySummary{}, err
	}
	snap, err := c.snapshot(ctx, warehouseID)
	if err != nil {
		return CapacitySummary{}, err
	}

	occupied := snap.OccupiedCapacity()
	return CapacitySummary{
		Occupied:  occupied,
		Total:     wh.Capacity,
		Remaining: wh.Capacity.Sub(occupied),
	}, nil
}
