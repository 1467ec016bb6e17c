package sweep

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mealdeck/basket-engine/internal/db"
	"github.com/mealdeck/basket-engine/internal/solver"
	"github.com/mealdeck/basket-engine/pkg/models"
)

// Runner walks a rectangle of (price, calorie) targets for a fixed menu
// and records every feasible cell, persisting findings and emitting
// real-time alerts. One solver engine is reused across the whole sweep,
// so a sweep over a large rectangle is also a continuous exercise of the
// engine's between-query isolation.
type Runner struct {
	store     *db.PostgresStore
	engineCfg solver.Config
	alertFunc func(alert FeasibleAlert) // Optional broadcast callback

	// Progress tracking (atomic for safe concurrent reads)
	cellsChecked  atomic.Int64
	totalCells    atomic.Int64
	feasibleFound atomic.Int64
	isRunning     atomic.Bool

	mu      sync.Mutex
	sweepID string
	bounds  Bounds
}

// Bounds describes the target rectangle of a sweep. Steps default to 1;
// coarser steps trade resolution for speed.
type Bounds struct {
	MinPrice    int64 `json:"minPrice"`
	MaxPrice    int64 `json:"maxPrice"`
	MinCalories int64 `json:"minCalories"`
	MaxCalories int64 `json:"maxCalories"`
	PriceStep   int64 `json:"priceStep,omitempty"`
	CalorieStep int64 `json:"calorieStep,omitempty"`
}

// FeasibleAlert is emitted in real time for every feasible cell found.
type FeasibleAlert struct {
	SweepID        string `json:"sweepId"`
	TargetPrice    int64  `json:"targetPrice"`
	TargetCalories int64  `json:"targetCalories"`
	StatesExpanded int64  `json:"statesExpanded"`
	Timestamp      string `json:"timestamp"`
}

// Progress is the runner's current state for the API.
type Progress struct {
	IsRunning     bool   `json:"isRunning"`
	SweepID       string `json:"sweepId,omitempty"`
	Bounds        Bounds `json:"bounds"`
	CellsChecked  int64  `json:"cellsChecked"`
	TotalCells    int64  `json:"totalCells"`
	FeasibleFound int64  `json:"feasibleFound"`
}

func NewRunner(store *db.PostgresStore, engineCfg solver.Config, alertFunc func(FeasibleAlert)) *Runner {
	return &Runner{
		store:     store,
		engineCfg: engineCfg,
		alertFunc: alertFunc,
	}
}

// GetProgress returns the current sweep progress (thread-safe).
func (r *Runner) GetProgress() Progress {
	r.mu.Lock()
	id := r.sweepID
	bounds := r.bounds
	r.mu.Unlock()

	return Progress{
		IsRunning:     r.isRunning.Load(),
		SweepID:       id,
		Bounds:        bounds,
		CellsChecked:  r.cellsChecked.Load(),
		TotalCells:    r.totalCells.Load(),
		FeasibleFound: r.feasibleFound.Load(),
	}
}

// SweepRange validates the request and walks the rectangle asynchronously.
// It returns the sweep id on acceptance; only one sweep runs at a time.
func (r *Runner) SweepRange(ctx context.Context, menu []models.Item, bounds Bounds) (string, error) {
	if bounds.PriceStep <= 0 {
		bounds.PriceStep = 1
	}
	if bounds.CalorieStep <= 0 {
		bounds.CalorieStep = 1
	}
	if bounds.MinPrice < 0 || bounds.MinCalories < 0 {
		return "", fmt.Errorf("sweep bounds must be non-negative")
	}
	if bounds.MaxPrice < bounds.MinPrice || bounds.MaxCalories < bounds.MinCalories {
		return "", fmt.Errorf("sweep bounds are inverted")
	}

	engine := solver.NewEngine(r.engineCfg)

	// The far corner is the largest query of the sweep; if it passes
	// validation every other cell does too.
	corner := models.BasketQuery{
		Items:          menu,
		TargetPrice:    bounds.MaxPrice,
		TargetCalories: bounds.MaxCalories,
	}
	if err := engine.ValidateQuery(corner); err != nil {
		return "", err
	}

	if !r.isRunning.CompareAndSwap(false, true) {
		return "", fmt.Errorf("sweep already in progress")
	}

	priceCells := (bounds.MaxPrice-bounds.MinPrice)/bounds.PriceStep + 1
	calorieCells := (bounds.MaxCalories-bounds.MinCalories)/bounds.CalorieStep + 1

	sweepID := uuid.New().String()
	r.mu.Lock()
	r.sweepID = sweepID
	r.bounds = bounds
	r.mu.Unlock()

	r.cellsChecked.Store(0)
	r.feasibleFound.Store(0)
	r.totalCells.Store(priceCells * calorieCells)

	go func() {
		defer r.isRunning.Store(false)

		log.Printf("[Sweeper] Starting sweep %s: prices %d→%d/%d, calories %d→%d/%d (%d cells, %d items)",
			sweepID, bounds.MinPrice, bounds.MaxPrice, bounds.PriceStep,
			bounds.MinCalories, bounds.MaxCalories, bounds.CalorieStep,
			priceCells*calorieCells, len(menu))

		for price := bounds.MinPrice; price <= bounds.MaxPrice; price += bounds.PriceStep {
			for calories := bounds.MinCalories; calories <= bounds.MaxCalories; calories += bounds.CalorieStep {
				select {
				case <-ctx.Done():
					log.Printf("[Sweeper] Sweep %s cancelled at cell (%d,%d)", sweepID, price, calories)
					return
				default:
				}

				r.sweepCell(ctx, engine, sweepID, menu, price, calories)

				checked := r.cellsChecked.Add(1)
				if checked%1000 == 0 {
					log.Printf("[Sweeper] Progress: %d/%d cells | %d feasible",
						checked, r.totalCells.Load(), r.feasibleFound.Load())
				}
			}
		}

		log.Printf("[Sweeper] Sweep %s complete: %d cells checked, %d feasible",
			sweepID, r.cellsChecked.Load(), r.feasibleFound.Load())
	}()

	return sweepID, nil
}

// sweepCell solves a single target pair and records it when feasible.
func (r *Runner) sweepCell(ctx context.Context, engine *solver.Engine, sweepID string, menu []models.Item, price, calories int64) {
	q := models.BasketQuery{
		Items:          menu,
		TargetPrice:    price,
		TargetCalories: calories,
	}

	feasible, stats, err := engine.Solve(q)
	if err != nil {
		log.Printf("[Sweeper] Solve error at cell (%d,%d): %v", price, calories, err)
		return
	}
	if !feasible {
		return
	}

	r.feasibleFound.Add(1)

	if r.store != nil {
		cell := models.SweepCell{
			SweepID:        sweepID,
			TargetPrice:    price,
			TargetCalories: calories,
			StatesExpanded: stats.StatesExpanded,
		}
		if err := r.store.SaveSweepCell(ctx, cell); err != nil {
			log.Printf("[Sweeper] DB persist error at cell (%d,%d): %v", price, calories, err)
		}
	}

	if r.alertFunc != nil {
		r.alertFunc(FeasibleAlert{
			SweepID:        sweepID,
			TargetPrice:    price,
			TargetCalories: calories,
			StatesExpanded: stats.StatesExpanded,
			Timestamp:      time.Now().Format(time.RFC3339),
		})
	}
}
