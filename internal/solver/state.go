package solver

// State identifies one cell of the search lattice: the first Index menu
// items have been decided, and the chosen ones sum to Spent cents and
// Calories kcal. The origin state is the zero value.
type State struct {
	Index    int   // Items decided so far
	Spent    int64 // Running price of the basket, cents
	Calories int64 // Running calorie load of the basket, kcal
}
