package solver

import "math"

// Table is the dense dead-state memo for the search lattice. A cell is
// Dead once the search has expanded it and found no path to the target
// through it; every other cell is Unknown. A Dead cell never goes back to
// Unknown within one run.
//
// Clearing between runs is O(1): each mark carries the generation that
// wrote it, and Reset advances the generation so every earlier mark turns
// stale at once. The backing array is reallocated only when a query needs
// more cells than any previous one, so a long-lived engine stops
// allocating once it has seen its largest query shape.
type Table struct {
	marks []uint32
	gen   uint32
	ny    int64 // price dimension: targetPrice+1
	nz    int64 // calorie dimension: targetCalories+1
	cells int64
}

// NewTable returns an empty table. It holds no storage until the first
// Reset sizes it for a query.
func NewTable() *Table {
	return &Table{}
}

// Reset prepares the table for a query over items+1 depth levels and
// targets (targetPrice, targetCalories), logically clearing all marks
// left by previous runs. The caller has already validated the shape
// against its capacity limits.
func (t *Table) Reset(items int, targetPrice, targetCalories int64) {
	t.ny = targetPrice + 1
	t.nz = targetCalories + 1
	t.cells = int64(items+1) * t.ny * t.nz

	if int64(len(t.marks)) < t.cells {
		t.marks = make([]uint32, t.cells)
		t.gen = 0
	} else if t.gen == math.MaxUint32 {
		// Generation wrapped: scrub once so old marks cannot alias.
		clear(t.marks)
		t.gen = 0
	}
	t.gen++
}

// MarkDead records that no path through st reaches the target.
func (t *Table) MarkDead(st State) {
	t.marks[t.index(st)] = t.gen
}

// Dead reports whether st was already expanded and ruled out in this run.
func (t *Table) Dead(st State) bool {
	return t.marks[t.index(st)] == t.gen
}

// Cells returns the number of addressable cells for the current shape.
func (t *Table) Cells() int64 {
	return t.cells
}

func (t *Table) index(st State) int {
	return int((int64(st.Index)*t.ny+st.Spent)*t.nz + st.Calories)
}
