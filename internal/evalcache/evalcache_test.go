package evalcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wallwars/internal/board"
	"wallwars/internal/evaluator"
)

// countingEvaluator counts how many times Evaluate actually runs the
// underlying work, and can be made to block until released, so tests can
// exercise the at-most-one-inflight invariant deterministically.
type countingEvaluator struct {
	calls   int64
	release chan struct{}
}

func (c *countingEvaluator) Evaluate(ctx context.Context, b *board.Board, turn board.Turn, prev *evaluator.PrevPosition) (evaluator.Evaluation, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.release != nil {
		<-c.release
	}
	return evaluator.Evaluation{Value: 0.5}, nil
}

func TestCacheHitAvoidsSecondCall(t *testing.T) {
	inner := &countingEvaluator{}
	cache := New(inner, 16)
	b := board.NewBoard(5, 5, board.Classic)
	turn := board.Turn{Player: board.Red, Action: board.First}

	if _, err := cache.Evaluate(context.Background(), b, turn, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Evaluate(context.Background(), b, turn, nil); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&inner.calls); got != 1 {
		t.Fatalf("underlying Evaluate called %d times, want 1", got)
	}
}

func TestConcurrentRequestsShareOneInflightCall(t *testing.T) {
	inner := &countingEvaluator{release: make(chan struct{})}
	cache := New(inner, 16)
	b := board.NewBoard(5, 5, board.Classic)
	turn := board.Turn{Player: board.Red, Action: board.First}

	const n = 10
	var wg sync.WaitGroup
	results := make([]evaluator.Evaluation, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			eval, err := cache.Evaluate(context.Background(), b, turn, nil)
			if err != nil {
				t.Errorf("Evaluate: %v", err)
				return
			}
			results[idx] = eval
		}(i)
	}

	time.Sleep(20 * time.Millisecond) // let every goroutine join the inflight entry
	close(inner.release)
	wg.Wait()

	if got := atomic.LoadInt64(&inner.calls); got != 1 {
		t.Fatalf("underlying Evaluate called %d times, want 1", got)
	}
	for i, eval := range results {
		if eval.Value != 0.5 {
			t.Fatalf("result[%d].Value = %v, want 0.5", i, eval.Value)
		}
	}
}

func TestCancellationDoesNotAbortSharedComputation(t *testing.T) {
	inner := &countingEvaluator{release: make(chan struct{})}
	cache := New(inner, 16)
	b := board.NewBoard(5, 5, board.Classic)
	turn := board.Turn{Player: board.Red, Action: board.First}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		cache.Evaluate(ctx, b, turn, nil)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel() // abandon the first caller's wait; the underlying call must continue

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(inner.release)
	}()
	eval, err := cache.Evaluate(context.Background(), b, turn, nil)
	if err != nil {
		t.Fatalf("second caller's Evaluate failed: %v", err)
	}
	if eval.Value != 0.5 {
		t.Fatalf("value = %v, want 0.5", eval.Value)
	}
	if got := atomic.LoadInt64(&inner.calls); got != 1 {
		t.Fatalf("underlying Evaluate called %d times, want 1", got)
	}
}

func TestDistinctPrevPawnsDoNotCollide(t *testing.T) {
	inner := &countingEvaluator{}
	cache := New(inner, 16)
	b := board.NewBoard(5, 5, board.Classic)
	turn := board.Turn{Player: board.Red, Action: board.First}
	cell := board.Cell{Col: 1, Row: 1}

	catPrev := &evaluator.PrevPosition{Pawn: board.Cat, Cell: cell}
	mousePrev := &evaluator.PrevPosition{Pawn: board.Mouse, Cell: cell}

	if _, err := cache.Evaluate(context.Background(), b, turn, catPrev); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Evaluate(context.Background(), b, turn, mousePrev); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&inner.calls); got != 2 {
		t.Fatalf("underlying Evaluate called %d times, want 2 (distinct keys)", got)
	}
}
