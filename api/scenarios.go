/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates warehouses, products,
	and a movement history that demonstrates specific features.

AVAILABLE SCENARIOS:

	small-depot:       One warehouse, two products, a handful of imports
	capacity-pressure: Warehouse close to full, next large import rejects
	hazard-split:      Hazardous and regular goods kept in separate sites
	turnover:          Imports and exports interleaved over several days

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create warehouses and products via the store
 3. Commit movements through the coordinator, so demo data passes the
    same validation pipeline as live traffic

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "capacity-pressure"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/stock-engine/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-depot",
		Name:        "Small Depot",
		Description: "One warehouse, two products, a few imports",
	},
	{
		ID:          "capacity-pressure",
		Name:        "Capacity Pressure",
		Description: "Warehouse near capacity; the next large import is rejected",
	},
	{
		ID:          "hazard-split",
		Name:        "Hazard Split",
		Description: "Hazardous and regular goods stored in separate warehouses",
	},
	{
		ID:          "turnover",
		Name:        "Turnover",
		Description: "Imports and exports interleaved over several days",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "small-depot":
		err = h.loadSmallDepotScenario(ctx)
	case "capacity-pressure":
		err = h.loadCapacityPressureScenario(ctx)
	case "hazard-split":
		err = h.loadHazardSplitScenario(ctx)
	case "turnover":
		err = h.loadTurnoverScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSmallDepotScenario(ctx context.Context) error {
	depot, err := h.Store.CreateWarehouse(ctx, ledger.Warehouse{
		Name:     "Central Depot",
		Capacity: ledger.MustDecimal("500"),
	})
	if err != nil {
		return err
	}

	bolts, err := h.Store.CreateProduct(ctx, ledger.Product{
		Name:        "Bolt Crate",
		SizePerUnit: ledger.MustDecimal("1.5"),
	})
	if err != nil {
		return err
	}
	panels, err := h.Store.CreateProduct(ctx, ledger.Product{
		Name:        "Steel Panel",
		SizePerUnit: ledger.MustDecimal("4"),
	})
	if err != nil {
		return err
	}

	return h.commitAll(ctx,
		ledger.MovementRequest{WarehouseID: depot.ID, ProductID: bolts.ID, Quantity: ledger.MustDecimal("100"), Kind: ledger.KindImport, Date: mustDate("2026-08-01")},
		ledger.MovementRequest{WarehouseID: depot.ID, ProductID: panels.ID, Quantity: ledger.MustDecimal("40"), Kind: ledger.KindImport, Date: mustDate("2026-08-03")},
		ledger.MovementRequest{WarehouseID: depot.ID, ProductID: bolts.ID, Quantity: ledger.MustDecimal("25"), Kind: ledger.KindExport, Date: mustDate("2026-08-10")},
	)
}

func (h *Handler) loadCapacityPressureScenario(ctx context.Context) error {
	// Capacity 100, product size 2: 40 units fit, the next 15 will not.
	tight, err := h.Store.CreateWarehouse(ctx, ledger.Warehouse{
		Name:     "Tight Bay",
		Capacity: ledger.MustDecimal("100"),
	})
	if err != nil {
		return err
	}

	drums, err := h.Store.CreateProduct(ctx, ledger.Product{
		Name:        "Oil Drum",
		SizePerUnit: ledger.MustDecimal("2"),
	})
	if err != nil {
		return err
	}

	return h.commitAll(ctx,
		ledger.MovementRequest{WarehouseID: tight.ID, ProductID: drums.ID, Quantity: ledger.MustDecimal("40"), Kind: ledger.KindImport, Date: mustDate("2026-08-15")},
	)
}

func (h *Handler) loadHazardSplitScenario(ctx context.Context) error {
	chem, err := h.Store.CreateWarehouse(ctx, ledger.Warehouse{
		Name:     "Chemical Store",
		Capacity: ledger.MustDecimal("300"),
	})
	if err != nil {
		return err
	}
	dry, err := h.Store.CreateWarehouse(ctx, ledger.Warehouse{
		Name:     "Dry Goods",
		Capacity: ledger.MustDecimal("300"),
	})
	if err != nil {
		return err
	}

	solvent, err := h.Store.CreateProduct(ctx, ledger.Product{
		Name:        "Solvent Barrel",
		SizePerUnit: ledger.MustDecimal("3"),
		Hazardous:   true,
	})
	if err != nil {
		return err
	}
	flour, err := h.Store.CreateProduct(ctx, ledger.Product{
		Name:        "Flour Sack",
		SizePerUnit: ledger.MustDecimal("1"),
	})
	if err != nil {
		return err
	}

	return h.commitAll(ctx,
		ledger.MovementRequest{WarehouseID: chem.ID, ProductID: solvent.ID, Quantity: ledger.MustDecimal("50"), Kind: ledger.KindImport, Date: mustDate("2026-08-05")},
		ledger.MovementRequest{WarehouseID: dry.ID, ProductID: flour.ID, Quantity: ledger.MustDecimal("120"), Kind: ledger.KindImport, Date: mustDate("2026-08-05")},
	)
}

func (h *Handler) loadTurnoverScenario(ctx context.Context) error {
	hub, err := h.Store.CreateWarehouse(ctx, ledger.Warehouse{
		Name:     "Distribution Hub",
		Capacity: ledger.MustDecimal("1000"),
	})
	if err != nil {
		return err
	}

	boxes, err := h.Store.CreateProduct(ctx, ledger.Product{
		Name:        "Parcel Box",
		SizePerUnit: ledger.MustDecimal("0.5"),
	})
	if err != nil {
		return err
	}
	pallets, err := h.Store.CreateProduct(ctx, ledger.Product{
		Name:        "Loaded Pallet",
		SizePerUnit: ledger.MustDecimal("8"),
	})
	if err != nil {
		return err
	}

	return h.commitAll(ctx,
		ledger.MovementRequest{WarehouseID: hub.ID, ProductID: boxes.ID, Quantity: ledger.MustDecimal("400"), Kind: ledger.KindImport, Date: mustDate("2026-07-01")},
		ledger.MovementRequest{WarehouseID: hub.ID, ProductID: pallets.ID, Quantity: ledger.MustDecimal("60"), Kind: ledger.KindImport, Date: mustDate("2026-07-02")},
		ledger.MovementRequest{WarehouseID: hub.ID, ProductID: boxes.ID, Quantity: ledger.MustDecimal("150"), Kind: ledger.KindExport, Date: mustDate("2026-07-08")},
		ledger.MovementRequest{WarehouseID: hub.ID, ProductID: pallets.ID, Quantity: ledger.MustDecimal("20"), Kind: ledger.KindExport, Date: mustDate("2026-07-09")},
		ledger.MovementRequest{WarehouseID: hub.ID, ProductID: boxes.ID, Quantity: ledger.MustDecimal("200"), Kind: ledger.KindImport, Date: mustDate("2026-07-15")},
	)
}

// commitAll routes scenario movements through the normal validation
// pipeline; a scenario that violates its own rules fails loudly.
func (h *Handler) commitAll(ctx context.Context, reqs ...ledger.MovementRequest) error {
	for _, req := range reqs {
		if _, err := h.Coordinator.CommitMovement(ctx, req); err != nil {
			return fmt.Errorf("scenario movement failed: %w", err)
		}
	}
	return nil
}

func mustDate(s string) ledger.Date {
	d, err := ledger.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
