package solver

import (
	"errors"
	"testing"
)

func TestStack_LIFOOrder(t *testing.T) {
	// Scenario: push three states, pop them back in reverse order.
	s := NewStack(8)

	states := []State{
		{Index: 0, Spent: 0, Calories: 0},
		{Index: 1, Spent: 5, Calories: 3},
		{Index: 2, Spent: 9, Calories: 7},
	}
	for _, st := range states {
		if err := s.Push(st); err != nil {
			t.Fatalf("Push failed unexpectedly: %v", err)
		}
	}

	for i := len(states) - 1; i >= 0; i-- {
		st, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop failed unexpectedly: %v", err)
		}
		if st != states[i] {
			t.Errorf("Expected pop %d to return %+v. Got: %+v", len(states)-1-i, states[i], st)
		}
	}

	if !s.Empty() {
		t.Errorf("Expected stack to be empty after popping everything. Got len: %d", s.Len())
	}
}

func TestStack_OverflowIsLoud(t *testing.T) {
	// Scenario: a stack with room for two states must reject the third
	// with ErrStackOverflow instead of growing or panicking.
	s := NewStack(2)

	if err := s.Push(State{Index: 1}); err != nil {
		t.Fatalf("First push failed: %v", err)
	}
	if err := s.Push(State{Index: 2}); err != nil {
		t.Fatalf("Second push failed: %v", err)
	}

	err := s.Push(State{Index: 3})
	if !errors.Is(err, ErrStackOverflow) {
		t.Errorf("Expected ErrStackOverflow on push past the limit. Got: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Expected failed push to leave the stack untouched. Got len: %d", s.Len())
	}
}

func TestStack_UnderflowIsLoud(t *testing.T) {
	// Scenario: popping an empty stack is a programming error and must
	// surface as ErrStackUnderflow, never as a silent zero state.
	s := NewStack(4)

	_, err := s.Pop()
	if !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Expected ErrStackUnderflow on empty pop. Got: %v", err)
	}
}

func TestStack_ResetKeepsLimit(t *testing.T) {
	s := NewStack(3)
	_ = s.Push(State{Index: 1})
	_ = s.Push(State{Index: 2})

	s.Reset()

	if !s.Empty() {
		t.Errorf("Expected empty stack after Reset. Got len: %d", s.Len())
	}
	if s.Limit() != 3 {
		t.Errorf("Expected Reset to preserve the limit of 3. Got: %d", s.Limit())
	}

	// The full limit must be usable again after a reset.
	for i := 0; i < 3; i++ {
		if err := s.Push(State{Index: i}); err != nil {
			t.Fatalf("Push %d after Reset failed: %v", i, err)
		}
	}
	if err := s.Push(State{Index: 99}); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("Expected overflow at the original limit after Reset. Got: %v", err)
	}
}

func TestStack_ZeroLimitRejectsEverything(t *testing.T) {
	s := NewStack(0)
	if err := s.Push(State{}); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("Expected a zero-limit stack to reject all pushes. Got: %v", err)
	}
}
