package testkit

import (
	"sync"
	"testing"
)

var seamMu sync.Mutex

// Swap replaces *target for the duration of the test and restores the
// original on cleanup. Pair with Serial when target is package state
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds a process-wide lock until the test finishes so tests that
// mutate shared seams cannot interleave
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}
