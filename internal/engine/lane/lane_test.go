package lane_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/droughtwatch/droughtwatch/internal/engine/lane"
)

func TestBeginAdvancesEpoch(t *testing.T) {
	l := lane.New("map")
	assert.Equal(t, uint64(0), l.Epoch())

	e1, ctx1 := l.Begin(context.Background())
	assert.Equal(t, uint64(1), e1)
	assert.True(t, l.IsCurrent(e1))
	assert.NoError(t, ctx1.Err())

	e2, ctx2 := l.Begin(context.Background())
	assert.Equal(t, uint64(2), e2)
	assert.True(t, l.IsCurrent(e2))
	assert.False(t, l.IsCurrent(e1))

	// Superseding cancels the previous context but not the new one.
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())
}

// TestOnlyNewestEpochApplies walks the month-scrub race: several
// requests start in quick succession and resolve out of order; only the
// last-issued one may touch state.
func TestOnlyNewestEpochApplies(t *testing.T) {
	l := lane.New("map")

	const n = 5
	epochs := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		e, _ := l.Begin(context.Background())
		epochs = append(epochs, e)
	}

	applied := 0
	// Completions arrive oldest-last to mimic network jitter.
	for i := n - 1; i >= 0; i-- {
		if l.IsCurrent(epochs[i]) {
			applied++
			assert.Equal(t, epochs[n-1], epochs[i])
		}
	}
	assert.Equal(t, 1, applied)
}

func TestCancelInvalidates(t *testing.T) {
	l := lane.New("panel")

	e, ctx := l.Begin(context.Background())
	l.Cancel()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, l.IsCurrent(e))

	// Cancel with nothing in flight is a no-op apart from the epoch.
	before := l.Epoch()
	l.Cancel()
	assert.Equal(t, before+1, l.Epoch())
}

func TestParentCancellationPropagates(t *testing.T) {
	l := lane.New("map")

	parent, cancel := context.WithCancel(context.Background())
	e, ctx := l.Begin(parent)
	cancel()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	// The epoch is untouched; only Begin and Cancel advance it.
	assert.True(t, l.IsCurrent(e))
}

func TestLanesAreIndependent(t *testing.T) {
	mapLane := lane.New("map")
	panelLane := lane.New("panel")

	_, mapCtx := mapLane.Begin(context.Background())
	pe, panelCtx := panelLane.Begin(context.Background())

	mapLane.Begin(context.Background())

	// Superseding the map lane leaves the panel lane alone.
	assert.ErrorIs(t, mapCtx.Err(), context.Canceled)
	assert.NoError(t, panelCtx.Err())
	assert.True(t, panelLane.IsCurrent(pe))
}

func TestConcurrentBegins(t *testing.T) {
	l := lane.New("map")

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			l.Begin(context.Background())
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(n), l.Epoch())
	assert.True(t, l.IsCurrent(n))
}
