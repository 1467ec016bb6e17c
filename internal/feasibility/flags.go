package feasibility

// --- Screening Signal Taxonomy (Bitmask) ---

// Layer 1: Structural certificates. Each flag is a proof about the query
// computed in one linear pass, before any search runs. A certificate
// either settles the verdict on its own or it is not raised at all.
const (
	FlagZeroTargets        = 1 << 0 // Both targets zero: the empty basket is exact
	FlagEmptyMenu          = 1 << 1 // No items but a positive target: unreachable
	FlagPriceDeficit       = 1 << 2 // Whole menu costs less than the price target
	FlagCalorieDeficit     = 1 << 3 // Whole menu carries fewer kcal than the target
	FlagPriceIndivisible   = 1 << 4 // gcd of prices does not divide the price target
	FlagCalorieIndivisible = 1 << 5 // gcd of calories does not divide the calorie target
)

// Layer 2: Decision provenance. Exactly one of these is set on every
// successful report.
const (
	FlagScreenDecided = 1 << 10 // A layer-1 certificate settled the verdict
	FlagSearchDecided = 1 << 11 // The lattice search settled the verdict
)

// Layer 3: Shadow lane outcomes.
const (
	FlagShadowChecked  = 1 << 20 // The grid lane replayed this query
	FlagShadowDiverged = 1 << 21 // The lanes disagreed (solver defect)
)

// DecidedBy values attached to reports.
const (
	DecidedByScreen = "screen"
	DecidedBySearch = "search"
)
