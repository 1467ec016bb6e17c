package metrics

import (
	"math"
	"testing"
)

func TestAgreementRate_PerfectAgreement(t *testing.T) {
	primary := []bool{true, false, true, true, false}
	shadow := []bool{true, false, true, true, false}

	rate := AgreementRate(primary, shadow)

	if math.Abs(rate-1.0) > 1e-9 {
		t.Errorf("Expected agreement rate 1.0 for identical lanes. Got: %f", rate)
	}
}

func TestAgreementRate_PartialAgreement(t *testing.T) {
	// Three of four pairs match.
	primary := []bool{true, true, false, false}
	shadow := []bool{true, true, false, true}

	rate := AgreementRate(primary, shadow)

	if math.Abs(rate-0.75) > 1e-9 {
		t.Errorf("Expected agreement rate 0.75. Got: %f", rate)
	}
}

func TestAgreementRate_EmptyInput(t *testing.T) {
	rate := AgreementRate(nil, nil)
	if rate != 0 {
		t.Errorf("Expected empty input to score 0. Got: %f", rate)
	}
}

func TestCohenKappa_PerfectAgreement(t *testing.T) {
	primary := []bool{true, false, true, false, true, false}
	shadow := []bool{true, false, true, false, true, false}

	kappa := CohenKappa(primary, shadow)

	if math.Abs(kappa-1.0) > 0.01 {
		t.Errorf("Expected kappa=1.0 for perfect agreement with mixed verdicts. Got: %f", kappa)
	}
}

func TestCohenKappa_ChanceLevelAgreement(t *testing.T) {
	// The shadow lane answers independently of the primary: agreement is
	// exactly what identical marginals produce by chance, so kappa ~ 0.
	primary := []bool{true, true, false, false}
	shadow := []bool{true, false, true, false}

	kappa := CohenKappa(primary, shadow)

	if math.Abs(kappa) > 0.01 {
		t.Errorf("Expected kappa near 0 for chance-level agreement. Got: %f", kappa)
	}
}

func TestCohenKappa_ConstantLanes(t *testing.T) {
	// Both lanes always say yes: formally undefined, reported as 1.
	primary := []bool{true, true, true}
	shadow := []bool{true, true, true}

	kappa := CohenKappa(primary, shadow)

	if math.Abs(kappa-1.0) > 0.01 {
		t.Errorf("Expected kappa=1.0 for constant agreeing lanes. Got: %f", kappa)
	}
}

func TestCohenKappa_WorseThanChance(t *testing.T) {
	// Systematic disagreement with balanced marginals lands below zero.
	primary := []bool{true, true, false, false}
	shadow := []bool{false, false, true, true}

	kappa := CohenKappa(primary, shadow)

	if kappa >= 0 {
		t.Errorf("Expected negative kappa for systematic disagreement. Got: %f", kappa)
	}
}

func TestDivergenceCount_CountsMismatches(t *testing.T) {
	primary := []bool{true, false, true}
	shadow := []bool{true, true, true}

	if got := DivergenceCount(primary, shadow); got != 1 {
		t.Errorf("Expected 1 divergence. Got: %d", got)
	}
}

func TestDivergenceCount_UnpairedPositionsDiverge(t *testing.T) {
	primary := []bool{true, true, true}
	shadow := []bool{true}

	if got := DivergenceCount(primary, shadow); got != 2 {
		t.Errorf("Expected 2 divergences from unpaired positions. Got: %d", got)
	}
}
