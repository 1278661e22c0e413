package wingman

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"gw2_isac/share"
	"gw2_isac/share/parallel"

	"github.com/pkg/errors"
)

type Fetcher interface {
	Bosses(ctx context.Context) ([]int64, error)
	Boss(ctx context.Context, id int64) (*BossBench, error)
}

// Cache serves benchmark snapshots. Readers never block and always see a complete map;
// Refresh replaces the snapshot wholesale.
type Cache struct {
	fetcher Fetcher
	workers int

	benches     atomic.Pointer[map[int64]*BossBench]
	lastUpdated atomic.Int64

	refreshLock sync.Mutex
}

func NewCache(fetcher Fetcher, workers int) *Cache {
	c := &Cache{
		fetcher: fetcher,
		workers: workers,
	}
	empty := make(map[int64]*BossBench)
	c.benches.Store(&empty)
	return c
}

func (c *Cache) snapshot() map[int64]*BossBench {
	return *c.benches.Load()
}

func (c *Cache) Lookup(id int64) (*BossBench, bool) {
	b, ok := c.snapshot()[id]
	return b, ok
}

func (c *Cache) HasData() bool {
	return len(c.snapshot()) > 0
}

// LastUpdated is the start of the last refresh, zero before the first one.
func (c *Cache) LastUpdated() time.Time {
	ns := c.lastUpdated.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// IDs lists the cached signed boss ids in ascending order.
func (c *Cache) IDs() []int64 {
	m := c.snapshot()
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	return ids
}

// Refresh fetches every boss in normal and challenge mode.
// A boss that fails to load keeps its previous bench.
func (c *Cache) Refresh(ctx context.Context) error {
	c.refreshLock.Lock()
	defer c.refreshLock.Unlock()

	c.lastUpdated.Store(time.Now().UnixNano())

	bosses, err := c.fetcher.Bosses(ctx)
	if err != nil {
		return errors.Wrap(err, "wingman bosses")
	}

	var (
		fetchedLock sync.Mutex
		fetched     = make(map[int64]*BossBench, len(bosses)*2)
		failed      int32
	)

	pool := parallel.New(c.workers)
	pool.Reset(ctx)
	for _, boss := range bosses {
		for _, id := range []int64{boss, -boss} {
			id := id
			pool.Add(func(ctx context.Context) error {
				b, err := c.fetcher.Boss(ctx, id)
				if err != nil {
					if share.IsContextClosedError(err) {
						return err
					}
					atomic.AddInt32(&failed, 1)
					return nil
				}

				fetchedLock.Lock()
				fetched[id] = b
				fetchedLock.Unlock()
				return nil
			})
		}
	}
	err = pool.Wait()
	if err != nil {
		return err
	}

	old := c.snapshot()
	next := make(map[int64]*BossBench, len(old)+len(fetched))
	for id, b := range old {
		next[id] = b
	}
	for id, b := range fetched {
		next[id] = b
	}
	c.benches.Store(&next)

	log.Printf("wingman: refreshed %d benches, %d skipped", len(fetched), failed)

	return nil
}

// Run refreshes immediately, then every period until ctx is done.
func (c *Cache) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		err := c.Refresh(ctx)
		if err != nil {
			share.Report(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
