package solver

// Stack is the explicit LIFO frontier of the depth-first search. The
// backing array grows on demand up to a fixed limit; pushing past the
// limit fails with ErrStackOverflow instead of reallocating forever, so a
// runaway search surfaces as a catchable error rather than an OOM kill.
type Stack struct {
	slots []State
	limit int
}

// initialStackSlots bounds the eager allocation so that small queries do
// not pay for the worst-case frontier up front.
const initialStackSlots = 1024

// NewStack returns an empty stack holding at most limit states.
func NewStack(limit int) *Stack {
	if limit < 0 {
		limit = 0
	}
	initial := limit
	if initial > initialStackSlots {
		initial = initialStackSlots
	}
	return &Stack{
		slots: make([]State, 0, initial),
		limit: limit,
	}
}

// Push appends a state to the frontier.
func (s *Stack) Push(st State) error {
	if len(s.slots) >= s.limit {
		return ErrStackOverflow
	}
	s.slots = append(s.slots, st)
	return nil
}

// Pop removes and returns the most recently pushed state.
func (s *Stack) Pop() (State, error) {
	if len(s.slots) == 0 {
		return State{}, ErrStackUnderflow
	}
	st := s.slots[len(s.slots)-1]
	s.slots = s.slots[:len(s.slots)-1]
	return st, nil
}

// Empty reports whether the frontier has no pending states.
func (s *Stack) Empty() bool {
	return len(s.slots) == 0
}

// Len returns the number of pending states.
func (s *Stack) Len() int {
	return len(s.slots)
}

// Limit returns the maximum number of states the stack will hold.
func (s *Stack) Limit() int {
	return s.limit
}

// Reset drops all pending states while keeping the backing array.
func (s *Stack) Reset() {
	s.slots = s.slots[:0]
}
