package agent

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOut_OneFailureDoesNotAbortBatch(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	outcomes := FanOut(context.Background(), items, 4, func(_ context.Context, n int) (int, error) {
		if n == 7 {
			return 0, errors.New("boom")
		}
		return n * 2, nil
	})

	require.Len(t, outcomes, 10)
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			assert.Equal(t, 7, o.Item)
			continue
		}
		assert.Equal(t, o.Item*2, o.Result)
	}
	assert.Equal(t, 1, failed)
}

func TestFanOut_PanicIsCapturedAsItemError(t *testing.T) {
	outcomes := FanOut(context.Background(), []string{"ok", "bad"}, 2, func(_ context.Context, s string) (string, error) {
		if s == "bad" {
			panic("unexpected payload")
		}
		return s, nil
	})

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		if o.Item == "bad" {
			require.Error(t, o.Err)
			assert.Contains(t, o.Err.Error(), "unexpected payload")
		} else {
			assert.NoError(t, o.Err)
		}
	}
}

func TestFanOut_RespectsWorkerBound(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 50)

	FanOut(context.Background(), items, 3, func(_ context.Context, n int) (int, error) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		defer inFlight.Add(-1)
		return n, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestFanOut_EmptyInput(t *testing.T) {
	outcomes := FanOut(context.Background(), nil, 5, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	assert.Empty(t, outcomes)
}

func TestFanOut_DefaultWorkersWhenNonPositive(t *testing.T) {
	var calls atomic.Int32
	items := make([]int, 25)
	outcomes := FanOut(context.Background(), items, 0, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	require.Len(t, outcomes, 25)
	assert.Equal(t, int32(25), calls.Load())
}

func TestFanOut_OutcomesCoverEveryItem(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	outcomes := FanOut(context.Background(), items, 2, func(_ context.Context, s string) (string, error) {
		return fmt.Sprintf("<%s>", s), nil
	})

	seen := make(map[string]string, len(outcomes))
	for _, o := range outcomes {
		seen[o.Item] = o.Result
	}
	require.Len(t, seen, len(items))
	for _, it := range items {
		assert.Equal(t, fmt.Sprintf("<%s>", it), seen[it])
	}
}
