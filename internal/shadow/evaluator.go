package shadow

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/mealdeck/basket-engine/internal/metrics"
	"github.com/mealdeck/basket-engine/internal/solver"
	"github.com/mealdeck/basket-engine/pkg/models"
)

// maxRetainedPairs bounds the verdict history kept for the agreement
// report. Older pairs are overwritten ring-style; the lifetime counters
// are unaffected.
const maxRetainedPairs = 4096

// Evaluator replays a sample of production queries on the dense-grid
// verification lane and tracks how often the two lanes agree. The lanes
// decide the same problem with unrelated mechanics, so a divergence here
// means a solver defect, not an interesting data point; every one is
// logged loudly and counted.
type Evaluator struct {
	every  int64 // replay every Nth search-decided query; <=0 disables
	budget int64 // grid cell budget for the verification lane

	observed atomic.Int64
	checked  atomic.Int64
	diverged atomic.Int64
	skipped  atomic.Int64 // queries too large for the grid budget

	mu     sync.Mutex
	pairs  []verdictPair
	cursor int
}

type verdictPair struct {
	search bool
	grid   bool
}

// Report summarizes lane agreement since process start.
type Report struct {
	Observed      int64   `json:"observed"`
	Checked       int64   `json:"checked"`
	Skipped       int64   `json:"skipped"`
	Divergences   int64   `json:"divergences"`
	AgreementRate float64 `json:"agreementRate"` // Over the retained window
	CohenKappa    float64 `json:"cohenKappa"`    // Over the retained window
}

// NewEvaluator builds a shadow lane that replays every Nth query against
// a grid bounded by gridCellBudget cells.
func NewEvaluator(every, gridCellBudget int64) *Evaluator {
	return &Evaluator{
		every:  every,
		budget: gridCellBudget,
	}
}

// Observe possibly replays q on the grid lane, given the search lane's
// verdict. It reports whether the replay ran and whether the lanes
// diverged. Safe for concurrent use.
func (ev *Evaluator) Observe(q models.BasketQuery, searchVerdict bool) (checked, diverged bool) {
	n := ev.observed.Add(1)
	if ev.every <= 0 || n%ev.every != 0 {
		return false, false
	}

	gridVerdict, err := solver.VerifyDP(q, ev.budget)
	if err != nil {
		ev.skipped.Add(1)
		log.Printf("[Shadow] Grid lane skipped a query: %v", err)
		return false, false
	}

	ev.checked.Add(1)
	ev.retain(verdictPair{search: searchVerdict, grid: gridVerdict})

	if gridVerdict != searchVerdict {
		ev.diverged.Add(1)
		log.Printf("[Shadow] DIVERGENCE: search=%v grid=%v on %d items, targets (%d,%d)",
			searchVerdict, gridVerdict, len(q.Items), q.TargetPrice, q.TargetCalories)
		return true, true
	}
	return true, false
}

func (ev *Evaluator) retain(p verdictPair) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if len(ev.pairs) < maxRetainedPairs {
		ev.pairs = append(ev.pairs, p)
		return
	}
	ev.pairs[ev.cursor] = p
	ev.cursor = (ev.cursor + 1) % maxRetainedPairs
}

// GenerateReport computes the agreement summary over the retained window
// plus the lifetime counters.
func (ev *Evaluator) GenerateReport() Report {
	ev.mu.Lock()
	search := make([]bool, len(ev.pairs))
	grid := make([]bool, len(ev.pairs))
	for i, p := range ev.pairs {
		search[i] = p.search
		grid[i] = p.grid
	}
	ev.mu.Unlock()

	return Report{
		Observed:      ev.observed.Load(),
		Checked:       ev.checked.Load(),
		Skipped:       ev.skipped.Load(),
		Divergences:   ev.diverged.Load(),
		AgreementRate: metrics.AgreementRate(search, grid),
		CohenKappa:    metrics.CohenKappa(search, grid),
	}
}
