package semaphore

import "context"

type Semaphore struct {
	ch chan struct{}
}

func New(max int) *Semaphore {
	sema := &Semaphore{
		ch: make(chan struct{}, max),
	}
	for i := 0; i < max; i++ {
		sema.ch <- struct{}{}
	}

	return sema
}

// Acquire blocks until a slot is free or ctx is done.
func (sema *Semaphore) Acquire(ctx context.Context) error {
	select {
	case <-sema.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (sema *Semaphore) TryAcquire() bool {
	select {
	case <-sema.ch:
		return true
	default:
		return false
	}
}

func (sema *Semaphore) Release() {
	sema.ch <- struct{}{}
}
