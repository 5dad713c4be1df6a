/*
handlers.go - HTTP API handlers for the stock movement engine

PURPOSE:
  Exposes the inventory engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Warehouses:
    GET    /api/warehouses                 List all warehouses
    POST   /api/warehouses                 Create warehouse
    GET    /api/warehouses/{id}            Get warehouse details
    PUT    /api/warehouses/{id}            Update warehouse
    DELETE /api/warehouses/{id}            Delete warehouse (no movements)
    GET    /api/warehouses/{id}/capacity   Occupied/remaining space
    GET    /api/warehouses/{id}/stock      Stock of one product (?product_id=)
    GET    /api/warehouses/{id}/movements  Ledger slice for this warehouse

  Products:
    GET    /api/products                   List all products
    POST   /api/products                   Create product
    GET    /api/products/{id}              Get product details
    PUT    /api/products/{id}              Update product
    DELETE /api/products/{id}              Delete product (no movements)

  Movements:
    GET    /api/movements                  Ledger in creation order
                                           (?warehouse_id=, ?product_id=)
    POST   /api/movements                  Validate-and-commit a movement
    POST   /api/movements/evaluate         Dry-run validation only

  Scenarios:
    GET    /api/scenarios                  List demo scenarios
    POST   /api/scenarios/load             Load a demo scenario
    POST   /api/scenarios/reset            Reset the database

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (coordinator, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (delete while referenced)
  - 422: Movement rejected by a ledger rule
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/stock-engine/ledger"
	"github.com/warp/stock-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Coordinator *ledger.Coordinator
	Log         zerolog.Logger

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store and coordinator.
func NewHandler(store *sqlite.Store, coord *ledger.Coordinator, log zerolog.Logger) *Handler {
	return &Handler{
		Store:       store,
		Coordinator: coord,
		Log:         log,
	}
}

// =============================================================================
// WAREHOUSE HANDLERS
// =============================================================================

// ListWarehouses returns all warehouses.
func (h *Handler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.Store.Warehouses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list warehouses", err)
		return
	}

	dtos := make([]WarehouseDTO, len(warehouses))
	for i, wh := range warehouses {
		dtos[i] = toWarehouseDTO(wh)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWarehouse returns a single warehouse.
func (h *Handler) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	wh, err := h.Store.Warehouse(r.Context(), ledger.WarehouseID(id))
	if err != nil {
		writeDomainError(w, "Failed to get warehouse", err)
		return
	}
	writeJSON(w, http.StatusOK, toWarehouseDTO(*wh))
}

// CreateWarehouse creates a new warehouse.
func (h *Handler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req SaveWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Capacity <= 0 {
		writeError(w, http.StatusBadRequest, "name and a positive capacity are required", nil)
		return
	}

	wh, err := h.Store.CreateWarehouse(r.Context(), ledger.Warehouse{
		Name:     req.Name,
		Capacity: decimalFromFloat(req.Capacity),
	})
	if err != nil {
		writeDomainError(w, "Failed to create warehouse", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWarehouseDTO(wh))
}

// UpdateWarehouse updates a warehouse's name and capacity.
func (h *Handler) UpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SaveWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Capacity <= 0 {
		writeError(w, http.StatusBadRequest, "name and a positive capacity are required", nil)
		return
	}

	wh, err := h.Store.UpdateWarehouse(r.Context(), ledger.Warehouse{
		ID:       ledger.WarehouseID(id),
		Name:     req.Name,
		Capacity: decimalFromFloat(req.Capacity),
	})
	if err != nil {
		writeDomainError(w, "Failed to update warehouse", err)
		return
	}
	writeJSON(w, http.StatusOK, toWarehouseDTO(wh))
}

// DeleteWarehouse deletes a warehouse with no recorded movements.
func (h *Handler) DeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteWarehouse(r.Context(), ledger.WarehouseID(id)); err != nil {
		writeDomainError(w, "Failed to delete warehouse", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCapacity returns the occupied/total/remaining space of a warehouse.
func (h *Handler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	summary, err := h.Coordinator.CapacitySummary(r.Context(), ledger.WarehouseID(id))
	if err != nil {
		writeDomainError(w, "Failed to compute capacity", err)
		return
	}

	occupied, _ := summary.Occupied.Float64()
	total, _ := summary.Total.Float64()
	remaining, _ := summary.Remaining.Float64()
	writeJSON(w, http.StatusOK, CapacitySummaryDTO{
		WarehouseID: id,
		Occupied:    occupied,
		Total:       total,
		Remaining:   remaining,
	})
}

// GetStock returns the net stock of one product in a warehouse.
// GET /api/warehouses/{id}/stock?product_id=N
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product_id query parameter is required", err)
		return
	}

	stock, err := h.Coordinator.CurrentStock(r.Context(), ledger.WarehouseID(id), ledger.ProductID(productID))
	if err != nil {
		writeDomainError(w, "Failed to compute stock", err)
		return
	}

	value, _ := stock.Float64()
	writeJSON(w, http.StatusOK, StockDTO{
		WarehouseID: id,
		ProductID:   productID,
		Stock:       value,
	})
}

// GetWarehouseMovements returns the ledger slice for one warehouse.
func (h *Handler) GetWarehouseMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// 404 before an empty list so unknown ids don't read as empty ledgers.
	if _, err := h.Store.Warehouse(r.Context(), ledger.WarehouseID(id)); err != nil {
		writeDomainError(w, "Failed to get warehouse", err)
		return
	}

	movements, err := h.Store.Movements(r.Context(), ledger.WarehouseID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list movements", err)
		return
	}
	writeJSON(w, http.StatusOK, toMovementDTOs(movements))
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns all products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.Products(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}

	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.Store.Product(r.Context(), ledger.ProductID(id))
	if err != nil {
		writeDomainError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*p))
}

// CreateProduct creates a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.SizePerUnit <= 0 {
		writeError(w, http.StatusBadRequest, "name and a positive size_per_unit are required", nil)
		return
	}

	p, err := h.Store.CreateProduct(r.Context(), ledger.Product{
		Name:        req.Name,
		SizePerUnit: decimalFromFloat(req.SizePerUnit),
		Hazardous:   req.Hazardous,
	})
	if err != nil {
		writeDomainError(w, "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// UpdateProduct updates a product's name, size, and hazard flag.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.SizePerUnit <= 0 {
		writeError(w, http.StatusBadRequest, "name and a positive size_per_unit are required", nil)
		return
	}

	p, err := h.Store.UpdateProduct(r.Context(), ledger.Product{
		ID:          ledger.ProductID(id),
		Name:        req.Name,
		SizePerUnit: decimalFromFloat(req.SizePerUnit),
		Hazardous:   req.Hazardous,
	})
	if err != nil {
		writeDomainError(w, "Failed to update product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// DeleteProduct deletes a product with no recorded movements.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteProduct(r.Context(), ledger.ProductID(id)); err != nil {
		writeDomainError(w, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MOVEMENT HANDLERS
// =============================================================================

// ListMovements returns the ledger in creation order, optionally
// narrowed by warehouse_id and product_id query parameters.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	var (
		movements []ledger.Movement
		err       error
	)

	warehouseID, hasWarehouse, ok := queryID(w, r, "warehouse_id")
	if !ok {
		return
	}
	productID, hasProduct, ok := queryID(w, r, "product_id")
	if !ok {
		return
	}

	switch {
	case hasWarehouse && hasProduct:
		movements, err = h.Store.MovementsForProduct(r.Context(),
			ledger.WarehouseID(warehouseID), ledger.ProductID(productID))
	case hasWarehouse:
		movements, err = h.Store.Movements(r.Context(), ledger.WarehouseID(warehouseID))
	case hasProduct:
		movements, err = h.Store.AllMovements(r.Context())
		if err == nil {
			filtered := movements[:0]
			for _, m := range movements {
				if m.ProductID == ledger.ProductID(productID) {
					filtered = append(filtered, m)
				}
			}
			movements = filtered
		}
	default:
		movements, err = h.Store.AllMovements(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list movements", err)
		return
	}
	writeJSON(w, http.StatusOK, toMovementDTOs(movements))
}

// SubmitMovement validates a movement against the current ledger state
// and appends it when every rule passes.
// POST /api/movements
func (h *Handler) SubmitMovement(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeMovementRequest(w, r)
	if !ok {
		return
	}

	m, err := h.Coordinator.CommitMovement(r.Context(), req)
	if err != nil {
		writeDomainError(w, "Movement rejected", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovementDTO(m))
}

// EvaluateMovement runs the validation pipeline without appending.
// POST /api/movements/evaluate
func (h *Handler) EvaluateMovement(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeMovementRequest(w, r)
	if !ok {
		return
	}

	ev, err := h.Coordinator.EvaluateMovement(r.Context(), req)
	if err != nil {
		writeDomainError(w, "Failed to evaluate movement", err)
		return
	}
	writeJSON(w, http.StatusOK, toEvaluationDTO(ev))
}

func (h *Handler) decodeMovementRequest(w http.ResponseWriter, r *http.Request) (ledger.MovementRequest, bool) {
	var body SubmitMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return ledger.MovementRequest{}, false
	}

	req := ledger.MovementRequest{
		WarehouseID: ledger.WarehouseID(body.WarehouseID),
		ProductID:   ledger.ProductID(body.ProductID),
		Quantity:    decimalFromFloat(body.Quantity),
		Kind:        ledger.MovementKind(body.Kind),
	}
	if body.Date != "" {
		d, err := ledger.ParseDate(body.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return ledger.MovementRequest{}, false
		}
		req.Date = d
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid movement", err)
		return ledger.MovementRequest{}, false
	}
	return req, true
}

// =============================================================================
// HELPERS
// =============================================================================

// queryID parses an optional integer query parameter. The second return
// reports whether the parameter was present.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false, false
	}
	return id, true, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps ledger errors onto HTTP statuses. A rule
// rejection carries its reason as the machine-readable code.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, message, err)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case ledger.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case ledger.IsRuleViolation(err):
		resp := ErrorResponse{Error: message, Details: err.Error()}
		var rv *ledger.RuleViolationError
		if errors.As(err, &rv) {
			resp.Code = string(rv.Reason)
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
