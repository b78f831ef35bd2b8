// Package evalcache wraps any evaluator.Evaluator with a bounded,
// fingerprint-keyed cache that deduplicates concurrent requests for the
// same position.
package evalcache

import (
	"context"
	"sync"

	"wallwars/internal/board"
	"wallwars/internal/evaluator"
)

type inflightEntry struct {
	done   chan struct{}
	result evaluator.Evaluation
	err    error
}

// Cache wraps an underlying evaluator with a capacity-bounded
// fingerprint->Evaluation cache, plus a second map tracking evaluations
// currently in flight so concurrent requests for the same key join a
// single underlying call instead of each triggering one.
//
// Eviction policy: when inserting would exceed capacity, the entire cache
// is reset rather than evicting a single entry, grounded on
// internal/engine/engine.go's nnEvalCache, which does the same
// (`len(e.nnCache.m) > nnEvalCacheCap` resets the whole map). This is
// coarser than LRU: a reset briefly drops recently-useful entries, but it
// keeps the critical section O(1) with no auxiliary recency bookkeeping.
type Cache struct {
	mu         sync.Mutex
	capacity   int
	entries    map[uint64]evaluator.Evaluation
	inflight   map[uint64]*inflightEntry
	underlying evaluator.Evaluator
}

// New wraps underlying with a cache of the given capacity.
func New(underlying evaluator.Evaluator, capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity:   capacity,
		entries:    make(map[uint64]evaluator.Evaluation, capacity),
		inflight:   make(map[uint64]*inflightEntry),
		underlying: underlying,
	}
}

var _ evaluator.Evaluator = (*Cache)(nil)

// Evaluate implements evaluator.Evaluator. The first caller for a given
// key starts the underlying evaluation in its own goroutine, detached
// from ctx, so that a later cancellation by any one caller never aborts
// the shared computation other subscribers are waiting on; it only stops
// that caller from waiting for it.
func (c *Cache) Evaluate(ctx context.Context, b *board.Board, turn board.Turn, prev *evaluator.PrevPosition) (evaluator.Evaluation, error) {
	key := fingerprint(b, turn, prev)

	c.mu.Lock()
	if eval, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return eval, nil
	}
	inf, exists := c.inflight[key]
	if !exists {
		inf = &inflightEntry{done: make(chan struct{})}
		c.inflight[key] = inf
		c.mu.Unlock()
		go c.resolve(key, inf, b, turn, prev)
	} else {
		c.mu.Unlock()
	}

	select {
	case <-inf.done:
		return inf.result, inf.err
	case <-ctx.Done():
		return evaluator.Evaluation{}, ctx.Err()
	}
}

// resolve runs the single underlying evaluation for key, moves a
// successful result into the cache, then delivers it to every subscriber
// waiting on inf.done. b must not be mutated by the caller while this is
// outstanding.
func (c *Cache) resolve(key uint64, inf *inflightEntry, b *board.Board, turn board.Turn, prev *evaluator.PrevPosition) {
	eval, err := c.underlying.Evaluate(context.Background(), b, turn, prev)

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil {
		if len(c.entries) >= c.capacity {
			c.entries = make(map[uint64]evaluator.Evaluation, c.capacity)
		}
		c.entries[key] = eval
	}
	c.mu.Unlock()

	inf.result = eval
	inf.err = err
	close(inf.done)
}

// prevPawnSalt disambiguates two PrevPosition values that name the same
// cell but a different pawn: board.Fingerprint's prev hint only varies by
// cell, so without this, "cat backtrack-suppressed at X" and "mouse
// backtrack-suppressed at X" would collide into the same cache key despite
// producing different (post-exclusion) Evaluations.
const prevPawnSalt = 0xA5A5A5A5A5A5A5A5

func fingerprint(b *board.Board, turn board.Turn, prev *evaluator.PrevPosition) uint64 {
	if prev == nil {
		return b.Fingerprint(turn, nil)
	}
	cell := prev.Cell
	key := b.Fingerprint(turn, &cell)
	if prev.Pawn == board.Mouse {
		key ^= prevPawnSalt
	}
	return key
}
