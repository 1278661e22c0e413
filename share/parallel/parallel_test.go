package parallel

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEveryJob(t *testing.T) {
	p := New(4)

	var done int32
	for i := 0; i < 50; i++ {
		p.Add(func(ctx context.Context) error {
			atomic.AddInt32(&done, 1)
			return nil
		})
	}

	require.NoError(t, p.Wait())
	assert.EqualValues(t, 50, atomic.LoadInt32(&done))
}

func TestPoolLimitsWorkers(t *testing.T) {
	p := New(2)

	var running, peak int32
	block := make(chan struct{})
	for i := 0; i < 6; i++ {
		p.Add(func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			<-block
			atomic.AddInt32(&running, -1)
			return nil
		})
	}
	close(block)

	require.NoError(t, p.Wait())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPoolFirstErrorCancels(t *testing.T) {
	p := New(1)

	boom := errors.New("boom")
	var after int32
	p.Add(func(ctx context.Context) error { return boom })
	p.Add(func(ctx context.Context) error {
		atomic.AddInt32(&after, 1)
		return nil
	})

	err := p.Wait()
	assert.Equal(t, boom, err)
	assert.EqualValues(t, 0, atomic.LoadInt32(&after))
}

func TestPoolReset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(1)
	p.Reset(ctx)
	p.Add(func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, p.Wait(), context.Canceled)
}
