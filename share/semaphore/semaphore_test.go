package semaphore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire(t *testing.T) {
	sema := New(2)

	assert.True(t, sema.TryAcquire())
	assert.True(t, sema.TryAcquire())
	assert.False(t, sema.TryAcquire())

	sema.Release()
	assert.True(t, sema.TryAcquire())
}

func TestAcquireWaitsForRelease(t *testing.T) {
	sema := New(1)
	require.NoError(t, sema.Acquire(context.Background()))

	acquired := make(chan error, 1)
	go func() {
		acquired <- sema.Acquire(context.Background())
	}()

	select {
	case <-acquired:
		t.Fatal("acquired while full")
	case <-time.After(50 * time.Millisecond):
	}

	sema.Release()
	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("not acquired after release")
	}
}

func TestAcquireCancelled(t *testing.T) {
	sema := New(1)
	require.True(t, sema.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := sema.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
