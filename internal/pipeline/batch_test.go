package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatches_BoundsConcurrency(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	var inFlight, peak atomic.Int32
	settled := make([]bool, len(items))
	order := 0

	err := runBatches(context.Background(), items, 10,
		func(_ context.Context, n int) (int, error) {
			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			if n == 14 {
				return 0, errors.New("item failed")
			}
			return n * 2, nil
		},
		func(i int, out int, err error) {
			order++
			settled[i] = true
			if i == 14 {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, i*2, out)
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 23, order)
	assert.LessOrEqual(t, peak.Load(), int32(10))
	for i, ok := range settled {
		assert.True(t, ok, "item %d not settled", i)
	}
}

func TestRunBatches_RecoversPanics(t *testing.T) {
	var got error
	err := runBatches(context.Background(), []int{1}, 10,
		func(context.Context, int) (int, error) { panic("bad record") },
		func(_ int, _ int, err error) { got = err },
	)
	require.NoError(t, err)
	require.Error(t, got)
	assert.Contains(t, got.Error(), "bad record")
}

func TestRunBatches_StopsBetweenBatchesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := make([]int, 5)
	calls := 0

	err := runBatches(ctx, items, 2,
		func(context.Context, int) (int, error) { return 0, nil },
		func(int, int, error) {
			calls++
			if calls == 2 {
				cancel()
			}
		},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}
