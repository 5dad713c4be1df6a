/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch on the closed set of sentinels and rejection reasons
  instead of matching message text.

ERROR CATEGORIES:
  1. Not-found errors  - Referenced warehouse/product absent
  2. Rule violations   - A prospective movement failed a business rule
  3. Store errors      - Append rejected by the persistence layer
  4. Input errors      - Malformed request (non-positive quantity, ...)

USAGE:
    if errors.Is(err, ledger.ErrRuleViolation) {
        var rv *ledger.RuleViolationError
        errors.As(err, &rv)
        switch rv.Reason { ... }
    }
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWarehouseNotFound is returned when a referenced warehouse doesn't exist.
	ErrWarehouseNotFound = errors.New("warehouse not found")

	// ErrProductNotFound is returned when a referenced product doesn't exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrMovementNotFound is returned when a movement id doesn't resolve.
	ErrMovementNotFound = errors.New("movement not found")

	// ErrInvalidInput is returned for malformed requests: non-positive
	// quantity or size, unknown movement kind.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRuleViolation is the base of every business-rule rejection.
	ErrRuleViolation = errors.New("rule violation")

	// ErrConflict is returned when the backing store rejects a write due
	// to a uniqueness or referential constraint. After validation passed
	// this signals a stale snapshot and is surfaced, never retried.
	ErrConflict = errors.New("store conflict")
)

// =============================================================================
// REJECTION REASONS - Closed set, one per validation rule
// =============================================================================

type RejectReason string

const (
	ReasonProductNotFound   RejectReason = "product_not_found"
	ReasonWarehouseNotFound RejectReason = "warehouse_not_found"
	ReasonCapacityExceeded  RejectReason = "capacity_exceeded"
	ReasonHazardConflict    RejectReason = "hazard_conflict"
	ReasonInsufficientStock RejectReason = "insufficient_stock"
)

// =============================================================================
// STRUCTURED ERRORS - Carry the figures that triggered the rejection
// =============================================================================

// RuleViolationError reports why a prospective movement was rejected.
// Requested and Available are in units of space for capacity violations
// and units of quantity for stock violations.
type RuleViolationError struct {
	Reason      RejectReason
	WarehouseID WarehouseID
	ProductID   ProductID
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *RuleViolationError) Error() string {
	switch e.Reason {
	case ReasonCapacityExceeded:
		return fmt.Sprintf("capacity exceeded: movement needs %v, warehouse %d has %v remaining",
			e.Requested, e.WarehouseID, e.Available)
	case ReasonHazardConflict:
		return fmt.Sprintf("hazard conflict: warehouse %d holds stock with a different hazard class", e.WarehouseID)
	case ReasonInsufficientStock:
		return fmt.Sprintf("insufficient stock: export of %v requested, %v on hand for product %d in warehouse %d",
			e.Requested, e.Available, e.ProductID, e.WarehouseID)
	default:
		return string(e.Reason)
	}
}

func (e *RuleViolationError) Unwrap() error { return ErrRuleViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing catalog record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWarehouseNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrMovementNotFound)
}

// IsRuleViolation returns true if the error is a business-rule rejection.
// These are recoverable: the request is rejected and no state changes.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrRuleViolation)
}

// IsConflict returns true if the backing store rejected the write.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
