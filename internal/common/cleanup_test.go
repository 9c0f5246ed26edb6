package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCleanupRunsTickAndFinalFunc(t *testing.T) {
	t.Cleanup(reset)
	interval := 20 * time.Millisecond

	count := 0
	cleaned := false
	Repeat(interval, func() {
		count++
		require.False(t, cleaned)
	}, func() {
		require.False(t, cleaned)
		cleaned = true
	})

	time.Sleep(10 * interval)
	Cleanup()

	require.GreaterOrEqual(t, count, 4)
	require.True(t, cleaned)
}

func TestCleanupRunsEachRegistrationOnce(t *testing.T) {
	t.Cleanup(reset)
	interval := 20 * time.Millisecond

	n := 5
	counts := make([]int, n)
	cleaned := make([]bool, n)
	for i := 0; i < n; i++ {
		idx := i
		Repeat(interval, func() {
			counts[idx]++
		}, func() {
			cleaned[idx] = true
		})
	}

	time.Sleep(10 * interval)
	Cleanup()

	for i := 0; i < n; i++ {
		require.GreaterOrEqual(t, counts[i], 4)
		require.True(t, cleaned[i])
	}
}

func TestCleanupOnlyRunsOnce(t *testing.T) {
	t.Cleanup(reset)

	calls := 0
	AtExit(func() { calls++ })

	Cleanup()
	Cleanup()

	require.Equal(t, 1, calls)
}
