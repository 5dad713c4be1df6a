/*
rules.go - Pre-commit validation of prospective movements

PURPOSE:
  Runs the ordered rule checks that decide whether a movement may be
  appended. Every rule reads the SAME snapshot, so the figures they
  consume are mutually consistent.

RULE ORDER (fixed):
  1. Product exists          (fail fast, no aggregation yet)
  2. Warehouse exists
  3. Capacity      - imports only
  4. Hazard class  - imports only; derived from warehouse contents
  5. Sufficiency   - exports only

  A rule that does not apply to the movement's kind is skipped, not
  evaluated vacuously.

OUTPUT:
  Evaluation carries the accept/reject decision, the rejection reason,
  and the aggregates computed along the way so callers (and logs) can
  show WHY a movement was rejected without recomputing anything.

SEE ALSO:
  - snapshot.go: The aggregates each rule consumes
  - errors.go: RejectReason values and RuleViolationError
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MOVEMENT REQUEST - A prospective movement, not yet part of the ledger
// =============================================================================

type MovementRequest struct {
	WarehouseID WarehouseID
	ProductID   ProductID
	Quantity    decimal.Decimal
	Kind        MovementKind
	Date        Date
}

// Validate checks the request's shape: positive quantity, known kind.
// Referential checks belong to the pipeline, not here.
func (r MovementRequest) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown movement kind %q", ErrInvalidInput, r.Kind)
	}
	if !r.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %v", ErrInvalidInput, r.Quantity)
	}
	return nil
}

// =============================================================================
// EVALUATION - Outcome of one validation pass
// =============================================================================

// Evaluation is the result of running the pipeline over one snapshot.
// When Accepted is false, Reason names the first rule that rejected the
// movement. The decimal figures are the aggregates the rules consumed;
// they are zero for figures a skipped rule never computed.
type Evaluation struct {
	Accepted bool
	Reason   RejectReason

	CurrentStock  decimal.Decimal
	Occupied      decimal.Decimal
	Remaining     decimal.Decimal
	RequiredSpace decimal.Decimal
}

func reject(reason RejectReason, e Evaluation) Evaluation {
	e.Accepted = false
	e.Reason = reason
	return e
}

// =============================================================================
// THE PIPELINE
// =============================================================================

// Evaluate runs the rule sequence for req against one snapshot. wh and
// prod are the current catalog records (nil when the id did not
// resolve). Pure function: same inputs, same outcome.
//
// The snapshot must exclude the prospective movement itself; capacity
// and sufficiency are judged against the ledger state immediately
// preceding the movement.
func Evaluate(req MovementRequest, wh *Warehouse, prod *Product, snap *Snapshot) Evaluation {
	if prod == nil {
		return reject(ReasonProductNotFound, Evaluation{})
	}
	if wh == nil {
		return reject(ReasonWarehouseNotFound, Evaluation{})
	}

	ev := Evaluation{
		Accepted:     true,
		CurrentStock: snap.CurrentStock(req.ProductID),
		Occupied:     snap.OccupiedCapacity(),
	}
	ev.Remaining = wh.Capacity.Sub(ev.Occupied)

	switch req.Kind {
	case KindImport:
		ev.RequiredSpace = RequiredSpace(*prod, req.Quantity)
		if ev.RequiredSpace.GreaterThan(ev.Remaining) {
			return reject(ReasonCapacityExceeded, ev)
		}
		if hazardConflict(req.ProductID, prod.Hazardous, snap) {
			return reject(ReasonHazardConflict, ev)
		}

	case KindExport:
		if ev.CurrentStock.LessThan(req.Quantity) {
			return reject(ReasonInsufficientStock, ev)
		}
	}

	return ev
}

// hazardConflict reports whether the warehouse currently holds stock of
// OTHER products whose hazard flag differs from the incoming product's.
// Compatibility is derived from contents: a product with zero net stock
// does not constrain the warehouse, and an emptied warehouse may switch
// hazard class freely.
func hazardConflict(incoming ProductID, incomingHazardous bool, snap *Snapshot) bool {
	if !snap.OccupiedCapacityExcluding(incoming).IsPositive() {
		return false
	}
	for _, p := range snap.PresentProducts() {
		if p.ID == incoming {
			continue
		}
		if p.Hazardous != incomingHazardous {
			return true
		}
	}
	return false
}

// RejectionError converts a rejected evaluation into the error taxonomy:
// existence failures map to the not-found sentinels, everything else to
// a RuleViolationError carrying the relevant figures.
func (e Evaluation) RejectionError(req MovementRequest) error {
	if e.Accepted {
		return nil
	}

	switch e.Reason {
	case ReasonProductNotFound:
		return fmt.Errorf("product %d: %w", req.ProductID, ErrProductNotFound)
	case ReasonWarehouseNotFound:
		return fmt.Errorf("warehouse %d: %w", req.WarehouseID, ErrWarehouseNotFound)
	case ReasonCapacityExceeded:
		return &RuleViolationError{
			Reason:      e.Reason,
			WarehouseID: req.WarehouseID,
			ProductID:   req.ProductID,
			Requested:   e.RequiredSpace,
			Available:   e.Remaining,
		}
	case ReasonInsufficientStock:
		return &RuleViolationError{
			Reason:      e.Reason,
			WarehouseID: req.WarehouseID,
			ProductID:   req.ProductID,
			Requested:   req.Quantity,
			Available:   e.CurrentStock,
		}
	default:
		return &RuleViolationError{
			Reason:      e.Reason,
			WarehouseID: req.WarehouseID,
			ProductID:   req.ProductID,
		}
	}
}
