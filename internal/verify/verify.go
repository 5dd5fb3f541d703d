// Package verify compares a snippet's actual output against a test's
// expected output and, on failure, locates the source line most likely
// responsible.
package verify

import (
	"fmt"
	"strings"
)

// LineUnknown is the FailedAt value when no responsible line could be
// located. Distinct from line 1; lines are 1-indexed.
const LineUnknown = 0

// Verdict is the outcome of one test run.
type Verdict struct {
	Passed   bool
	FailedAt int
}

// Evaluate applies the output verification rule:
//
//   - runtime errors take priority over output comparison;
//   - expected longer than actual fails (missing outputs);
//   - expected shorter than actual passes only when expected is the
//     exact leading prefix of actual (trailing extra lines ignored);
//   - equal lengths require element-wise equality in order.
//
// Empty expected and empty actual is a pass.
func Evaluate(expected, actual, runErrors []string, source string) Verdict {
	if len(runErrors) > 0 {
		return Verdict{Passed: false, FailedAt: findFailingLine(source, runErrors[0])}
	}

	ok, indicator := compareOutputs(expected, actual)
	if !ok {
		return Verdict{Passed: false, FailedAt: findFailingLine(source, indicator)}
	}
	return Verdict{Passed: true}
}

func compareOutputs(expected, actual []string) (bool, string) {
	if len(expected) > len(actual) {
		return false, "Missing outputs"
	}
	if len(expected) < len(actual) {
		ignored := len(actual) - len(expected)
		return equal(expected, actual[:len(expected)]), fmt.Sprintf("Outputs ignored %d", ignored)
	}
	if equal(expected, actual) {
		return true, "ok"
	}
	return false, "Mismatch"
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// findFailingLine scans source for the first line whose text contains a
// readInput call carrying the indicator, 1-indexed. This is a
// best-effort heuristic kept for compatibility with existing test
// tooling, not a guarantee.
func findFailingLine(source, indicator string) int {
	marker := "readInput(" + indicator + ")"
	for i, line := range strings.Split(source, "\n") {
		if strings.Contains(line, marker) {
			return i + 1
		}
	}
	return LineUnknown
}
