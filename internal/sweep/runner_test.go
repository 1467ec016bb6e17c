package sweep

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mealdeck/basket-engine/internal/solver"
	"github.com/mealdeck/basket-engine/pkg/models"
)

func waitForSweep(t *testing.T, r *Runner) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for r.GetProgress().IsRunning {
		if time.Now().After(deadline) {
			t.Fatalf("Sweep did not finish within the deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSweepRange_FindsExactlyTheFeasibleCells(t *testing.T) {
	// Scenario: menu of one item at (2,3), rectangle (0..4)x(0..4).
	// Exactly two cells are feasible: (0,0) via the empty basket and
	// (2,3) via buying the item.
	var mu sync.Mutex
	found := make(map[[2]int64]bool)

	r := NewRunner(nil, solver.DefaultConfig(), func(a FeasibleAlert) {
		mu.Lock()
		found[[2]int64{a.TargetPrice, a.TargetCalories}] = true
		mu.Unlock()
	})

	menu := []models.Item{{Price: 2, Calories: 3}}
	sweepID, err := r.SweepRange(context.Background(), menu, Bounds{MaxPrice: 4, MaxCalories: 4})
	if err != nil {
		t.Fatalf("SweepRange failed unexpectedly: %v", err)
	}
	if sweepID == "" {
		t.Fatalf("Expected a non-empty sweep id")
	}

	waitForSweep(t, r)

	progress := r.GetProgress()
	if progress.TotalCells != 25 {
		t.Errorf("Expected 25 total cells for a 5x5 rectangle. Got: %d", progress.TotalCells)
	}
	if progress.CellsChecked != 25 {
		t.Errorf("Expected all 25 cells to be checked. Got: %d", progress.CellsChecked)
	}
	if progress.FeasibleFound != 2 {
		t.Errorf("Expected exactly 2 feasible cells. Got: %d", progress.FeasibleFound)
	}

	mu.Lock()
	defer mu.Unlock()
	if !found[[2]int64{0, 0}] {
		t.Errorf("Expected the empty-basket cell (0,0) to be feasible")
	}
	if !found[[2]int64{2, 3}] {
		t.Errorf("Expected the buy-the-item cell (2,3) to be feasible")
	}
	if len(found) != 2 {
		t.Errorf("Expected no other feasible cells. Got: %v", found)
	}
}

func TestSweepRange_StepsCoarsenTheGrid(t *testing.T) {
	// Scenario: steps of 2 over (0..4)x(0..4) visit a 3x3 lattice.
	r := NewRunner(nil, solver.DefaultConfig(), nil)

	menu := []models.Item{{Price: 1, Calories: 1}}
	_, err := r.SweepRange(context.Background(), menu, Bounds{
		MaxPrice:    4,
		MaxCalories: 4,
		PriceStep:   2,
		CalorieStep: 2,
	})
	if err != nil {
		t.Fatalf("SweepRange failed unexpectedly: %v", err)
	}

	waitForSweep(t, r)

	progress := r.GetProgress()
	if progress.TotalCells != 9 {
		t.Errorf("Expected 9 cells with step 2. Got: %d", progress.TotalCells)
	}
	if progress.CellsChecked != 9 {
		t.Errorf("Expected all 9 cells to be checked. Got: %d", progress.CellsChecked)
	}
}

func TestSweepRange_RejectsBadBounds(t *testing.T) {
	r := NewRunner(nil, solver.DefaultConfig(), nil)
	menu := []models.Item{{Price: 1, Calories: 1}}

	if _, err := r.SweepRange(context.Background(), menu, Bounds{MinPrice: 5, MaxPrice: 1, MaxCalories: 3}); err == nil {
		t.Errorf("Expected inverted price bounds to be rejected")
	}
	if _, err := r.SweepRange(context.Background(), menu, Bounds{MinPrice: -1, MaxPrice: 1, MaxCalories: 3}); err == nil {
		t.Errorf("Expected negative bounds to be rejected")
	}
}

func TestSweepRange_ValidatesAgainstEngineCaps(t *testing.T) {
	// Scenario: the far corner of the rectangle exceeds the engine's
	// price capacity, so the sweep is refused before it starts.
	cfg := solver.Config{Caps: solver.Capacities{
		MaxItems:      10,
		MaxPrice:      50,
		MaxCalories:   50,
		MaxTableCells: 1 << 20,
	}}
	r := NewRunner(nil, cfg, nil)

	menu := []models.Item{{Price: 1, Calories: 1}}
	_, err := r.SweepRange(context.Background(), menu, Bounds{MaxPrice: 100, MaxCalories: 10})
	if err == nil {
		t.Errorf("Expected an over-capacity sweep to be rejected")
	}
	if r.GetProgress().IsRunning {
		t.Errorf("Expected no sweep to be running after a rejected request")
	}
}

func TestSweepRange_OnlyOneSweepAtATime(t *testing.T) {
	// Scenario: a long sweep is in flight; a second request must be
	// refused until it finishes or is cancelled.
	r := NewRunner(nil, solver.DefaultConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	menu := []models.Item{
		{Price: 1, Calories: 2},
		{Price: 3, Calories: 1},
		{Price: 5, Calories: 4},
	}
	if _, err := r.SweepRange(ctx, menu, Bounds{MaxPrice: 999, MaxCalories: 999}); err != nil {
		t.Fatalf("First sweep failed to start: %v", err)
	}

	if _, err := r.SweepRange(context.Background(), menu, Bounds{MaxPrice: 3, MaxCalories: 3}); err == nil {
		t.Errorf("Expected the second sweep to be refused while the first is running")
	}

	cancel()
	waitForSweep(t, r)
}
