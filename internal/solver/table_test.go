package solver

import "testing"

func TestTable_MarkAndQuery(t *testing.T) {
	// Scenario: cells start Unknown, become Dead exactly when marked.
	tbl := NewTable()
	tbl.Reset(3, 10, 10)

	st := State{Index: 1, Spent: 5, Calories: 5}
	if tbl.Dead(st) {
		t.Errorf("Expected a fresh cell to be Unknown. Got: Dead")
	}

	tbl.MarkDead(st)
	if !tbl.Dead(st) {
		t.Errorf("Expected cell to be Dead after MarkDead. Got: Unknown")
	}

	// A neighboring cell along each axis must be unaffected.
	neighbors := []State{
		{Index: 2, Spent: 5, Calories: 5},
		{Index: 1, Spent: 6, Calories: 5},
		{Index: 1, Spent: 5, Calories: 6},
	}
	for _, nb := range neighbors {
		if tbl.Dead(nb) {
			t.Errorf("Expected neighbor %+v to stay Unknown when %+v was marked", nb, st)
		}
	}
}

func TestTable_ResetForgetsMarks(t *testing.T) {
	// Scenario: a second run on the same shape must observe none of the
	// marks left by the first run. Stale dead cells across runs would
	// turn feasible queries into false negatives.
	tbl := NewTable()
	tbl.Reset(2, 4, 4)

	marked := []State{
		{Index: 0, Spent: 0, Calories: 0},
		{Index: 1, Spent: 2, Calories: 2},
		{Index: 2, Spent: 4, Calories: 4},
	}
	for _, st := range marked {
		tbl.MarkDead(st)
	}

	tbl.Reset(2, 4, 4)

	for _, st := range marked {
		if tbl.Dead(st) {
			t.Errorf("Expected %+v to be Unknown after Reset. Got: Dead", st)
		}
	}
}

func TestTable_ResetToLargerShape(t *testing.T) {
	// Scenario: the table grows when a bigger query arrives, and the
	// larger address space is fully usable.
	tbl := NewTable()
	tbl.Reset(1, 2, 2)
	tbl.MarkDead(State{Index: 1, Spent: 2, Calories: 2})

	tbl.Reset(5, 9, 9)

	if got := tbl.Cells(); got != 6*10*10 {
		t.Errorf("Expected 600 cells for shape (5,9,9). Got: %d", got)
	}

	corner := State{Index: 5, Spent: 9, Calories: 9}
	if tbl.Dead(corner) {
		t.Errorf("Expected grown corner cell to be Unknown. Got: Dead")
	}
	tbl.MarkDead(corner)
	if !tbl.Dead(corner) {
		t.Errorf("Expected grown corner cell to be Dead after marking")
	}
}

func TestTable_ResetToSmallerShapeReusesStorage(t *testing.T) {
	// Scenario: shrinking queries reuse the existing backing array, and
	// marks from the larger run are invisible in the smaller one even
	// where the flattened indices overlap.
	tbl := NewTable()
	tbl.Reset(4, 8, 8)
	tbl.MarkDead(State{Index: 0, Spent: 0, Calories: 0})
	tbl.MarkDead(State{Index: 1, Spent: 1, Calories: 1})

	tbl.Reset(2, 3, 3)

	if tbl.Dead(State{Index: 0, Spent: 0, Calories: 0}) {
		t.Errorf("Expected origin cell to be Unknown after shrinking Reset. Got: Dead")
	}
	if tbl.Dead(State{Index: 1, Spent: 1, Calories: 1}) {
		t.Errorf("Expected cell to be Unknown after shrinking Reset. Got: Dead")
	}
}
