package solver

import (
	"fmt"

	"github.com/mealdeck/basket-engine/pkg/models"
)

// VerifyDP answers the same feasibility question as the search engine with
// a dense boolean grid over (price, calorie) sums instead of a lattice
// walk. Item values are non-negative, so any subset whose totals land
// exactly on both targets also keeps every running prefix within budget;
// the two lanes must therefore always agree. This lane exists to
// cross-check the search engine, not to replace it.
//
// maxCells bounds the grid allocation: (targetPrice+1)*(targetCalories+1).
// Oversized instances are refused with an error, never silently truncated.
// Pass 0 to disable the bound.
func VerifyDP(q models.BasketQuery, maxCells int64) (bool, error) {
	if q.TargetPrice < 0 {
		return false, &ValidationError{Field: "targetPrice", Reason: "must be non-negative"}
	}
	if q.TargetCalories < 0 {
		return false, &ValidationError{Field: "targetCalories", Reason: "must be non-negative"}
	}
	for i, it := range q.Items {
		if it.Price < 0 || it.Calories < 0 {
			return false, &ValidationError{
				Field:  fmt.Sprintf("items[%d]", i),
				Reason: "must be non-negative",
			}
		}
	}

	nz := q.TargetCalories + 1
	cells := (q.TargetPrice + 1) * nz
	if maxCells > 0 && cells > maxCells {
		return false, fmt.Errorf("verification grid needs %d cells, budget is %d", cells, maxCells)
	}

	// grid[y*nz+z] marks that some subset of the items consumed so far
	// sums to exactly (y cents, z kcal). Rows are walked high-to-low so
	// each item is counted at most once.
	grid := make([]bool, cells)
	grid[0] = true

	for _, it := range q.Items {
		for y := q.TargetPrice - it.Price; y >= 0; y-- {
			for z := q.TargetCalories - it.Calories; z >= 0; z-- {
				if grid[y*nz+z] {
					grid[(y+it.Price)*nz+(z+it.Calories)] = true
				}
			}
		}
	}

	return grid[q.TargetPrice*nz+q.TargetCalories], nil
}
