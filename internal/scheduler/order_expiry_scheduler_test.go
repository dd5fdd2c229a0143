package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	mu     sync.Mutex
	calls  []time.Duration
	err    error
	signal chan struct{}
}

func (f *fakeExpirer) ExpireStalePendingOrders(ctx context.Context, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, olderThan)
	f.mu.Unlock()
	if f.signal != nil {
		select {
		case f.signal <- struct{}{}:
		default:
		}
	}
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep ran without a deadline")
	}
	return len(f.calls), f.err
}

func (f *fakeExpirer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestOrderExpiryScheduler_RunOnce(t *testing.T) {
	expirer := &fakeExpirer{}
	s := NewOrderExpiryScheduler(expirer, "@every 1h", 24*time.Hour)

	s.RunOnce()
	expirer.err = errors.New("database unavailable")
	s.RunOnce()

	require.Equal(t, 2, expirer.callCount())
	assert.Equal(t, 24*time.Hour, expirer.calls[0])
}

func TestOrderExpiryScheduler_InvalidSpec(t *testing.T) {
	s := NewOrderExpiryScheduler(&fakeExpirer{}, "every now and then", time.Hour)
	assert.Error(t, s.Start())
}

func TestOrderExpiryScheduler_StartStop(t *testing.T) {
	expirer := &fakeExpirer{signal: make(chan struct{}, 1)}
	s := NewOrderExpiryScheduler(expirer, "@every 1s", time.Minute)
	require.NoError(t, s.Start())

	select {
	case <-expirer.signal:
	case <-time.After(5 * time.Second):
		t.Fatal("expiry job did not run")
	}
	s.Stop()

	assert.GreaterOrEqual(t, expirer.callCount(), 1)
}
