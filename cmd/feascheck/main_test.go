package main

import (
	"strings"
	"testing"
)

func runWith(t *testing.T, input string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut strings.Builder
	code = run(strings.NewReader(input), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_FeasibleBasketPrintsYes(t *testing.T) {
	// Scenario: items one and two sum to exactly (10,10).
	code, stdout, _ := runWith(t, "3 10 10\n5 5\n5 5\n1 1\n")

	if code != exitOK {
		t.Errorf("Expected exit 0 for a solved query. Got: %d", code)
	}
	if stdout != "Yes\n" {
		t.Errorf("Expected output %q. Got: %q", "Yes\n", stdout)
	}
}

func TestRun_InfeasibleBasketPrintsNo(t *testing.T) {
	// Scenario: subset sums are (0,0), (2,2), (4,4); none is (3,3). An
	// infeasible query is still a successful run.
	code, stdout, _ := runWith(t, "2 3 3\n2 2\n2 2\n")

	if code != exitOK {
		t.Errorf("Expected exit 0 for an infeasible query. Got: %d", code)
	}
	if stdout != "No\n" {
		t.Errorf("Expected output %q. Got: %q", "No\n", stdout)
	}
}

func TestRun_SkippingTheOnlyItemPrintsYes(t *testing.T) {
	code, stdout, _ := runWith(t, "1 0 0\n1 1\n")

	if code != exitOK {
		t.Errorf("Expected exit 0. Got: %d", code)
	}
	if stdout != "Yes\n" {
		t.Errorf("Expected output %q. Got: %q", "Yes\n", stdout)
	}
}

func TestRun_TruncatedInputIsAnErrorNotANo(t *testing.T) {
	// Scenario: the header promises two items but only one arrives. The
	// diagnostic goes to stderr and nothing resembling a verdict may
	// reach stdout.
	code, stdout, stderr := runWith(t, "2 3 3\n2 2\n")

	if code != exitInvalidInput {
		t.Errorf("Expected exit %d for truncated input. Got: %d", exitInvalidInput, code)
	}
	if stdout != "" {
		t.Errorf("Expected no verdict on stdout for bad input. Got: %q", stdout)
	}
	if stderr == "" {
		t.Errorf("Expected a diagnostic on stderr for truncated input")
	}
}

func TestRun_NonNumericInputIsRejected(t *testing.T) {
	code, stdout, stderr := runWith(t, "one 3 3\n")

	if code != exitInvalidInput {
		t.Errorf("Expected exit %d for a non-numeric count. Got: %d", exitInvalidInput, code)
	}
	if stdout != "" {
		t.Errorf("Expected no verdict on stdout. Got: %q", stdout)
	}
	if !strings.Contains(stderr, "not an integer") {
		t.Errorf("Expected an integer diagnostic. Got: %q", stderr)
	}
}

func TestRun_NegativeValuesAreRejected(t *testing.T) {
	code, stdout, _ := runWith(t, "1 5 5\n-2 3\n")

	if code != exitInvalidInput {
		t.Errorf("Expected exit %d for a negative price. Got: %d", exitInvalidInput, code)
	}
	if stdout != "" {
		t.Errorf("Expected no verdict on stdout. Got: %q", stdout)
	}
}

func TestRun_OversizedCountIsRejectedBeforeScanningItems(t *testing.T) {
	code, _, stderr := runWith(t, "99999999 1 1\n")

	if code != exitInvalidInput {
		t.Errorf("Expected exit %d for an oversized item count. Got: %d", exitInvalidInput, code)
	}
	if !strings.Contains(stderr, "capacity") {
		t.Errorf("Expected a capacity diagnostic. Got: %q", stderr)
	}
}
