// Package feasibility wraps the solver in the report pipeline the service
// exposes: validation, cheap structural screening, the authoritative
// lattice search, and the optional shadow cross-check.
package feasibility

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mealdeck/basket-engine/internal/shadow"
	"github.com/mealdeck/basket-engine/internal/solver"
	"github.com/mealdeck/basket-engine/pkg/models"
)

// Analyzer produces feasibility reports. The screening layer may only
// answer when it holds a proof; everything else is settled by the search
// engine. Not safe for concurrent use: callers own the isolation model,
// either one Analyzer per goroutine or external serialization.
type Analyzer struct {
	engine     *solver.Engine
	shadowEval *shadow.Evaluator // Optional; nil disables the cross-check lane
}

// NewAnalyzer builds a report pipeline around engine. shadowEval may be
// nil.
func NewAnalyzer(engine *solver.Engine, shadowEval *shadow.Evaluator) *Analyzer {
	return &Analyzer{
		engine:     engine,
		shadowEval: shadowEval,
	}
}

// Engine exposes the underlying solver, mainly so callers can validate
// queries up front with the same capacities the pipeline enforces.
func (a *Analyzer) Engine() *solver.Engine {
	return a.engine
}

// AnalyzeQuery runs the full pipeline on q. Validation failures and
// search-lane resource errors are returned as errors; an infeasible
// basket is a normal report with Feasible=false.
func (a *Analyzer) AnalyzeQuery(q models.BasketQuery) (models.FeasibilityReport, error) {
	start := time.Now()
	report := models.FeasibilityReport{
		QueryID:        uuid.New().String(),
		NumItems:       len(q.Items),
		TargetPrice:    q.TargetPrice,
		TargetCalories: q.TargetCalories,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	if err := a.engine.ValidateQuery(q); err != nil {
		return report, err
	}

	flags, verdict, decided := screenQuery(q)
	report.ScreenFlags = flags
	if decided {
		report.Feasible = verdict
		report.DecidedBy = DecidedByScreen
		report.ScreenFlags |= FlagScreenDecided
		report.ProcessingTime = elapsedMs(start)
		return report, nil
	}

	feasible, stats, err := a.engine.Solve(q)
	if err != nil {
		return report, fmt.Errorf("search lane: %w", err)
	}
	report.Feasible = feasible
	report.DecidedBy = DecidedBySearch
	report.ScreenFlags |= FlagSearchDecided
	report.Stats = &stats

	if a.shadowEval != nil {
		checked, diverged := a.shadowEval.Observe(q, feasible)
		if checked {
			report.ScreenFlags |= FlagShadowChecked
		}
		if diverged {
			report.ScreenFlags |= FlagShadowDiverged
		}
	}

	report.ProcessingTime = elapsedMs(start)
	return report, nil
}

// screenQuery computes the layer-1 certificates. It returns the raised
// flags, the verdict they prove, and whether they prove one at all. Only
// FlagZeroTargets proves feasibility; every other certificate is a proof
// of infeasibility.
func screenQuery(q models.BasketQuery) (flags uint64, feasible bool, decided bool) {
	if q.TargetPrice == 0 && q.TargetCalories == 0 {
		return FlagZeroTargets, true, true
	}

	if len(q.Items) == 0 {
		return FlagEmptyMenu, false, true
	}

	var sumPrice, sumCalories int64
	var gcdPrice, gcdCalories int64
	for _, it := range q.Items {
		// Saturating sums: a wrapped total would go negative and forge a
		// deficit certificate for a feasible query.
		sumPrice = saturatingAdd(sumPrice, it.Price)
		sumCalories = saturatingAdd(sumCalories, it.Calories)
		gcdPrice = gcd(gcdPrice, it.Price)
		gcdCalories = gcd(gcdCalories, it.Calories)
	}

	if sumPrice < q.TargetPrice {
		flags |= FlagPriceDeficit
	}
	if sumCalories < q.TargetCalories {
		flags |= FlagCalorieDeficit
	}
	// Every subset sum is a multiple of the menu-wide gcd. A gcd of zero
	// means every value is zero, which the deficit checks already cover.
	if gcdPrice > 0 && q.TargetPrice%gcdPrice != 0 {
		flags |= FlagPriceIndivisible
	}
	if gcdCalories > 0 && q.TargetCalories%gcdCalories != 0 {
		flags |= FlagCalorieIndivisible
	}

	if flags != 0 {
		return flags, false, true
	}
	return 0, false, false
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// saturatingAdd sums two non-negative values, pinning at MaxInt64 instead
// of wrapping.
func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
