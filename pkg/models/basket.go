package models

// Item represents a single menu entry available for purchase.
type Item struct {
	Name     string `json:"name,omitempty"` // Display label; ignored by the solver
	Price    int64  `json:"price"`          // in cents
	Calories int64  `json:"calories"`       // in kcal
}

// BasketQuery asks whether some subset of Items, decided in menu order,
// spends exactly TargetPrice and consumes exactly TargetCalories. Running
// totals must never exceed either target while the basket is being built.
type BasketQuery struct {
	Items          []Item `json:"items"`
	TargetPrice    int64  `json:"targetPrice"`    // in cents
	TargetCalories int64  `json:"targetCalories"` // in kcal
}

// SearchStats captures the work performed by a single solver run.
type SearchStats struct {
	StatesExpanded int64 `json:"statesExpanded"` // States popped and expanded
	MemoHits       int64 `json:"memoHits"`       // Pops skipped via the dead-state table
	StatesPushed   int64 `json:"statesPushed"`   // Total frontier pushes including the origin
	PeakStackLen   int   `json:"peakStackLen"`   // High-water mark of the frontier
	TableCells     int64 `json:"tableCells"`     // Dense memo cells addressable for this query
}

// FeasibilityReport holds the full verdict for one basket query.
type FeasibilityReport struct {
	QueryID        string       `json:"queryId"`
	Feasible       bool         `json:"feasible"`
	DecidedBy      string       `json:"decidedBy"`       // "screen" or "search"
	ScreenFlags    uint64       `json:"screenFlags"`     // Bitmask of structural pre-check signals
	Stats          *SearchStats `json:"stats,omitempty"` // Absent when screening settled the verdict
	NumItems       int          `json:"numItems"`
	TargetPrice    int64        `json:"targetPrice"`
	TargetCalories int64        `json:"targetCalories"`
	ProcessingTime float64      `json:"processingTimeMs"`
	Timestamp      string       `json:"timestamp"`
}

// QueryRecord is the persisted form of a basket query, pending or solved.
type QueryRecord struct {
	ID             string  `json:"id"`
	Items          []Item  `json:"items"`
	TargetPrice    int64   `json:"targetPrice"`
	TargetCalories int64   `json:"targetCalories"`
	Status         string  `json:"status"`             // "pending" / "done" / "failed"
	Feasible       *bool   `json:"feasible,omitempty"` // nil until solved
	DecidedBy      string  `json:"decidedBy,omitempty"`
	ScreenFlags    uint64  `json:"screenFlags"`
	StatesExpanded int64   `json:"statesExpanded"`
	ProcessingTime float64 `json:"processingTimeMs"`
	Error          string  `json:"error,omitempty"` // Populated when Status is "failed"
}

// SweepCell records one feasible target pair discovered by a menu sweep.
type SweepCell struct {
	SweepID        string `json:"sweepId"`
	TargetPrice    int64  `json:"targetPrice"`
	TargetCalories int64  `json:"targetCalories"`
	StatesExpanded int64  `json:"statesExpanded"`
}
