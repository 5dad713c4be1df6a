/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMALS AT THE BOUNDARY:
  Quantities, sizes, and capacities travel as JSON numbers (float64).
  They are converted to shopspring decimals immediately on the way in
  and back to float64 only on the way out; all arithmetic in between is
  exact.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Domain model
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/stock-engine/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// WarehouseDTO represents a warehouse in API responses.
type WarehouseDTO struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"`
}

// SaveWarehouseRequest is the request to create or update a warehouse.
type SaveWarehouseRequest struct {
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"`
}

// ProductDTO represents a product in API responses.
type ProductDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	SizePerUnit float64 `json:"size_per_unit"`
	Hazardous   bool    `json:"hazardous"`
}

// SaveProductRequest is the request to create or update a product.
type SaveProductRequest struct {
	Name        string  `json:"name"`
	SizePerUnit float64 `json:"size_per_unit"`
	Hazardous   bool    `json:"hazardous"`
}

// MovementDTO represents a ledger movement in API responses.
type MovementDTO struct {
	ID          int64   `json:"id"`
	WarehouseID int64   `json:"warehouse_id"`
	ProductID   int64   `json:"product_id"`
	Quantity    float64 `json:"quantity"`
	Kind        string  `json:"kind"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// SubmitMovementRequest is the request to commit or evaluate a movement.
type SubmitMovementRequest struct {
	WarehouseID int64   `json:"warehouse_id"`
	ProductID   int64   `json:"product_id"`
	Quantity    float64 `json:"quantity"`
	Kind        string  `json:"kind"`
	Date        string  `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}

// EvaluationDTO is the outcome of a dry-run validation.
type EvaluationDTO struct {
	Accepted      bool    `json:"accepted"`
	Reason        string  `json:"reason,omitempty"`
	CurrentStock  float64 `json:"current_stock"`
	Occupied      float64 `json:"occupied"`
	Remaining     float64 `json:"remaining"`
	RequiredSpace float64 `json:"required_space"`
}

// StockDTO reports a product's net stock in one warehouse.
type StockDTO struct {
	WarehouseID int64   `json:"warehouse_id"`
	ProductID   int64   `json:"product_id"`
	Stock       float64 `json:"stock"`
}

// CapacitySummaryDTO reports occupied/total/remaining space.
type CapacitySummaryDTO struct {
	WarehouseID int64   `json:"warehouse_id"`
	Occupied    float64 `json:"occupied"`
	Total       float64 `json:"total"`
	Remaining   float64 `json:"remaining"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toWarehouseDTO(w ledger.Warehouse) WarehouseDTO {
	capacity, _ := w.Capacity.Float64()
	return WarehouseDTO{
		ID:       int64(w.ID),
		Name:     w.Name,
		Capacity: capacity,
	}
}

func toProductDTO(p ledger.Product) ProductDTO {
	size, _ := p.SizePerUnit.Float64()
	return ProductDTO{
		ID:          int64(p.ID),
		Name:        p.Name,
		SizePerUnit: size,
		Hazardous:   p.Hazardous,
	}
}

func toMovementDTO(m ledger.Movement) MovementDTO {
	qty, _ := m.Quantity.Float64()
	dto := MovementDTO{
		ID:          int64(m.ID),
		WarehouseID: int64(m.WarehouseID),
		ProductID:   int64(m.ProductID),
		Quantity:    qty,
		Kind:        string(m.Kind),
		Date:        m.Date.String(),
	}
	if !m.CreatedAt.IsZero() {
		dto.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toMovementDTOs(movements []ledger.Movement) []MovementDTO {
	dtos := make([]MovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = toMovementDTO(m)
	}
	return dtos
}

func toEvaluationDTO(ev ledger.Evaluation) EvaluationDTO {
	stock, _ := ev.CurrentStock.Float64()
	occupied, _ := ev.Occupied.Float64()
	remaining, _ := ev.Remaining.Float64()
	required, _ := ev.RequiredSpace.Float64()
	return EvaluationDTO{
		Accepted:      ev.Accepted,
		Reason:        string(ev.Reason),
		CurrentStock:  stock,
		Occupied:      occupied,
		Remaining:     remaining,
		RequiredSpace: required,
	}
}

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
