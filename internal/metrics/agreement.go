package metrics

import "math"

// AgreementRate returns the fraction of paired verdicts on which two
// solver lanes agreed. Pairs are positional: primary[i] and shadow[i]
// answered the same query. Returns 0 for empty or mismatched inputs.
func AgreementRate(primary, shadow []bool) float64 {
	n := len(primary)
	if n == 0 || n != len(shadow) {
		return 0
	}
	agreed := 0
	for i := range primary {
		if primary[i] == shadow[i] {
			agreed++
		}
	}
	return float64(agreed) / float64(n)
}

// CohenKappa returns chance-corrected agreement between two boolean
// verdict streams: +1.0 is perfect agreement, 0.0 is the agreement two
// independent raters with the same marginals would reach by chance, and
// negative values are worse than chance.
//
// When both lanes are constant the chance-expected agreement is already
// 1.0 and kappa is formally undefined; this implementation returns 1 if
// the lanes agree everywhere and 0 otherwise.
func CohenKappa(primary, shadow []bool) float64 {
	n := len(primary)
	if n == 0 || n != len(shadow) {
		return 0
	}

	agreed, primaryYes, shadowYes := 0, 0, 0
	for i := range primary {
		if primary[i] == shadow[i] {
			agreed++
		}
		if primary[i] {
			primaryYes++
		}
		if shadow[i] {
			shadowYes++
		}
	}

	po := float64(agreed) / float64(n)
	pY1 := float64(primaryYes) / float64(n)
	pY2 := float64(shadowYes) / float64(n)
	pe := pY1*pY2 + (1-pY1)*(1-pY2)

	if math.Abs(1-pe) < 1e-12 {
		if po >= 1 {
			return 1
		}
		return 0
	}
	return (po - pe) / (1 - pe)
}

// DivergenceCount returns how many paired verdicts disagree. Mismatched
// inputs count every unpaired position as a divergence so truncation bugs
// cannot masquerade as agreement.
func DivergenceCount(primary, shadow []bool) int {
	short, long := len(primary), len(shadow)
	if short > long {
		short, long = long, short
	}
	diverged := long - short
	for i := 0; i < short; i++ {
		if primary[i] != shadow[i] {
			diverged++
		}
	}
	return diverged
}
