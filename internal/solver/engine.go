// Package solver decides exact-basket feasibility: whether some subset of
// a menu, taken in menu order, lands exactly on a price and calorie target
// without overshooting either along the way. The search walks the
// (index, spent, calories) lattice depth-first with an explicit stack and
// memoizes dead cells so each is expanded at most once.
package solver

import (
	"fmt"

	"github.com/mealdeck/basket-engine/pkg/models"
)

// Order selects which branch the search explores first when both the buy
// and skip successors of a state are open. The verdict is identical either
// way; order only changes how much of the lattice gets expanded before a
// feasible basket is found.
type Order int

const (
	// OrderSkipFirst explores the skip branch first, racing to full menu
	// depth before committing to purchases. Most items stay on the shelf
	// in typical queries, so this usually reaches a verdict with the
	// fewest expansions.
	OrderSkipFirst Order = iota

	// OrderBuyFirst explores the buy branch first.
	OrderBuyFirst
)

// Capacities bound the query shapes an engine accepts. They are runtime
// configuration rather than compile-time limits: working storage is sized
// from the actual query, and the capacities only gate validation.
type Capacities struct {
	MaxItems      int   // Largest menu length
	MaxPrice      int64 // Largest price target, cents
	MaxCalories   int64 // Largest calorie target, kcal
	MaxTableCells int64 // Dense memo budget: (n+1)*(price+1)*(calories+1)
}

// DefaultCapacities returns the limits the hosted service runs with.
func DefaultCapacities() Capacities {
	return Capacities{
		MaxItems:      500,
		MaxPrice:      100000,
		MaxCalories:   100000,
		MaxTableCells: 64 << 20,
	}
}

// Config carries the tunable behavior of an Engine.
type Config struct {
	Caps       Capacities
	Order      Order
	StepBudget int64 // Max state expansions per solve; 0 disables the guardrail
}

// DefaultConfig returns the production configuration: default capacities,
// skip-first exploration, no step budget.
func DefaultConfig() Config {
	return Config{Caps: DefaultCapacities()}
}

// Engine runs the exact-basket search. It owns its traversal stack and
// memo table outright; there is no global state. An Engine is not safe
// for concurrent use, but one Engine may serve any number of sequential
// queries: the memo table is logically cleared at the start of every
// Solve, so no verdict can leak from one query into the next.
type Engine struct {
	cfg   Config
	table *Table
}

// NewEngine builds an engine from cfg. A zero Caps falls back to
// DefaultCapacities.
func NewEngine(cfg Config) *Engine {
	if cfg.Caps == (Capacities{}) {
		cfg.Caps = DefaultCapacities()
	}
	return &Engine{
		cfg:   cfg,
		table: NewTable(),
	}
}

// Caps returns the capacity limits this engine validates against.
func (e *Engine) Caps() Capacities {
	return e.cfg.Caps
}

// ValidateQuery checks shape and capacity limits without running any
// search. A nil return guarantees Solve will accept the query. Failures
// are *ValidationError values and never stand in for a "No" verdict.
func (e *Engine) ValidateQuery(q models.BasketQuery) error {
	if q.TargetPrice < 0 {
		return &ValidationError{Field: "targetPrice", Reason: "must be non-negative"}
	}
	if q.TargetCalories < 0 {
		return &ValidationError{Field: "targetCalories", Reason: "must be non-negative"}
	}
	if q.TargetPrice > e.cfg.Caps.MaxPrice {
		return &ValidationError{
			Field:  "targetPrice",
			Reason: fmt.Sprintf("%d exceeds capacity %d", q.TargetPrice, e.cfg.Caps.MaxPrice),
		}
	}
	if q.TargetCalories > e.cfg.Caps.MaxCalories {
		return &ValidationError{
			Field:  "targetCalories",
			Reason: fmt.Sprintf("%d exceeds capacity %d", q.TargetCalories, e.cfg.Caps.MaxCalories),
		}
	}
	if len(q.Items) > e.cfg.Caps.MaxItems {
		return &ValidationError{
			Field:  "items",
			Reason: fmt.Sprintf("menu has %d items, capacity is %d", len(q.Items), e.cfg.Caps.MaxItems),
		}
	}
	for i, it := range q.Items {
		if it.Price < 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].price", i),
				Reason: "must be non-negative",
			}
		}
		if it.Calories < 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].calories", i),
				Reason: "must be non-negative",
			}
		}
	}
	cells := int64(len(q.Items)+1) * (q.TargetPrice + 1) * (q.TargetCalories + 1)
	if cells > e.cfg.Caps.MaxTableCells {
		return &ValidationError{
			Field:  "query",
			Reason: fmt.Sprintf("memo table needs %d cells, budget is %d", cells, e.cfg.Caps.MaxTableCells),
		}
	}
	return nil
}

// Solve reports whether some in-order subset of the menu hits both targets
// exactly. Infeasibility is the normal (false, nil) outcome; errors are
// reserved for invalid queries and resource exhaustion.
//
// The search seeds the frontier with the origin state and repeats: pop a
// state; succeed if it is the goal cell (all items decided, both targets
// met exactly); skip it if a previous expansion already proved it dead;
// otherwise push the buy successor when it stays within both budgets, push
// the skip successor unconditionally, and mark the state dead. Draining
// the frontier without touching the goal proves infeasibility because
// every reachable selection prefix was expanded.
func (e *Engine) Solve(q models.BasketQuery) (bool, models.SearchStats, error) {
	var stats models.SearchStats
	if err := e.ValidateQuery(q); err != nil {
		return false, stats, err
	}

	n := len(q.Items)
	e.table.Reset(n, q.TargetPrice, q.TargetCalories)
	stats.TableCells = e.table.Cells()

	// The frontier never legitimately outgrows cells+1: each cell is
	// expanded at most once, and an expansion grows the stack by at most
	// one slot net. Overflow past that bound means internal corruption.
	stack := NewStack(int(e.table.Cells()) + 1)

	push := func(st State) error {
		if err := stack.Push(st); err != nil {
			return fmt.Errorf("at depth %d: %w", st.Index, err)
		}
		stats.StatesPushed++
		if l := stack.Len(); l > stats.PeakStackLen {
			stats.PeakStackLen = l
		}
		return nil
	}

	if err := push(State{}); err != nil {
		return false, stats, err
	}

	for !stack.Empty() {
		st, err := stack.Pop()
		if err != nil {
			return false, stats, fmt.Errorf("draining frontier: %w", err)
		}

		// Success short-circuits the drain. The goal cell is the one
		// cell that is never expanded and never marked dead.
		if st.Index == n && st.Spent == q.TargetPrice && st.Calories == q.TargetCalories {
			return true, stats, nil
		}

		if e.table.Dead(st) {
			stats.MemoHits++
			continue
		}

		if e.cfg.StepBudget > 0 && stats.StatesExpanded >= e.cfg.StepBudget {
			return false, stats, fmt.Errorf("after %d expansions: %w", stats.StatesExpanded, ErrStepBudget)
		}
		stats.StatesExpanded++

		if st.Index < n {
			item := q.Items[st.Index]
			skip := State{
				Index:    st.Index + 1,
				Spent:    st.Spent,
				Calories: st.Calories,
			}
			// Budget guard in subtraction form. Every reached state keeps
			// st.Spent <= target, so the remaining-budget difference is
			// exact where the additive form could wrap on a near-MaxInt64
			// item and let a poisoned state through.
			buyOpen := item.Price <= q.TargetPrice-st.Spent && item.Calories <= q.TargetCalories-st.Calories
			var buy State
			if buyOpen {
				buy = State{
					Index:    st.Index + 1,
					Spent:    st.Spent + item.Price,
					Calories: st.Calories + item.Calories,
				}
			}

			// The branch pushed last pops first.
			if e.cfg.Order == OrderBuyFirst {
				if err := push(skip); err != nil {
					return false, stats, err
				}
				if buyOpen {
					if err := push(buy); err != nil {
						return false, stats, err
					}
				}
			} else {
				if buyOpen {
					if err := push(buy); err != nil {
						return false, stats, err
					}
				}
				if err := push(skip); err != nil {
					return false, stats, err
				}
			}
		}

		e.table.MarkDead(st)
	}

	return false, stats, nil
}
