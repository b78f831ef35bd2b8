package mcts

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"wallwars/internal/board"
)

// pathStep names one traversed edge during selection: the arena index of
// the node it belongs to, and the edge's position within that node's Edges.
type pathStep struct {
	node int32
	edge int
}

// Sample runs up to n select/expand/backpropagate rounds, bounded to
// maxParallelism concurrent samples in flight, following
// christopherWilliams98-risk-agent's MCTS.iterate task-channel worker
// pool: a closed, pre-filled channel of n tokens drained by a
// fixed pool of goroutines, so the last goroutine to finish its share
// simply exits rather than waiting on stragglers. It returns the first
// error encountered (typically ctx cancellation reaching the evaluator) or
// ctx.Err() if n finished but ctx was cancelled concurrently.
func (t *Tree) Sample(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	parallelism := t.maxParallelism
	if parallelism > n {
		parallelism = n
	}
	if parallelism < 1 {
		parallelism = 1
	}

	tasks := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		tasks <- struct{}{}
	}
	close(tasks)

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error
	for w := 0; w < parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range tasks {
				if ctx.Err() != nil {
					return
				}
				if err := t.runOneSample(ctx); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (t *Tree) runOneSample(ctx context.Context) error {
	path, leafIdx := t.selectLeaf()
	leaf := t.nodeAt(leafIdx)

	v, err := t.expandLeaf(ctx, leafIdx)
	if err != nil {
		releaseVirtualLoss(t, path)
		return err
	}
	backpropagate(t, path, leaf.Turn.Player, v)
	return nil
}

// selectLeaf recurses from the root, at every expanded node choosing the
// edge with the highest PUCT score and adding virtual loss to it, until it
// reaches a node with no edges yet (unexpanded, or a terminal position with
// an empty edge list). Children are created lazily the first time their
// edge is selected.
func (t *Tree) selectLeaf() ([]pathStep, int32) {
	var path []pathStep
	cur := t.currentRoot()
	for {
		node := t.nodeAt(cur)
		node.mu.Lock()
		if len(node.Edges) == 0 {
			node.mu.Unlock()
			return path, cur
		}
		ei := selectBestEdge(node, t.cpuct)
		edge := node.Edges[ei]
		if edge.Child == noChild {
			child := spawnChild(node, edge.Action)
			edge.Child = t.appendNode(child)
		}
		next := edge.Child
		atomic.AddInt32(&edge.L, 1)
		node.mu.Unlock()

		path = append(path, pathStep{node: cur, edge: ei})
		cur = next
	}
}

// selectBestEdge picks the edge maximizing Q+U: Q(e) = (W(e) - L(e)) /
// max(1, N(e) + L(e)), and edge score Q + c_puct*prior*sqrt(sum
// N)/(1+N+L). Ties break by first-encountered edge order. Callers must hold
// node.mu.
func selectBestEdge(node *Node, cpuct float64) int {
	var sumN int64
	for _, e := range node.Edges {
		sumN += e.N
	}
	sqrtSumN := math.Sqrt(float64(sumN))

	best := -1
	bestScore := math.Inf(-1)
	for i, e := range node.Edges {
		l := float64(atomic.LoadInt32(&e.L))
		n := float64(e.N)
		q := (e.W - l) / math.Max(1, n+l)
		u := cpuct * e.Prior * sqrtSumN / (1 + n + l)
		score := q + u
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// expandLeaf installs leaf's edges and self-value the first time it is
// reached, tolerating the race where two concurrent samples reach the same
// freshly spawned leaf: both may call the evaluator, but only the first to
// reacquire the lock installs its result, and the underlying evaluator is
// typically an internal/evalcache.Cache that joins the duplicate call
// rather than repeating the work.
func (t *Tree) expandLeaf(ctx context.Context, leafIdx int32) (float64, error) {
	leaf := t.nodeAt(leafIdx)

	leaf.mu.Lock()
	if leaf.Edges != nil {
		v := leaf.selfValue
		leaf.mu.Unlock()
		return v, nil
	}
	leaf.mu.Unlock()

	if w := leaf.Board.Winner(); w != board.Undecided {
		v := leaf.Board.ScoreFor(leaf.Turn.Player)
		leaf.mu.Lock()
		if leaf.Edges == nil {
			leaf.Edges = []*Edge{}
			leaf.selfValue = v
		}
		v = leaf.selfValue
		leaf.mu.Unlock()
		return v, nil
	}

	eval, err := t.eval.Evaluate(ctx, leaf.Board, leaf.Turn, leaf.Prev)
	if err != nil {
		return 0, err
	}

	leaf.mu.Lock()
	if leaf.Edges == nil {
		edges := make([]*Edge, len(eval.Edges))
		for i, ep := range eval.Edges {
			edges[i] = &Edge{Action: ep.Action, Prior: ep.Prior, Child: noChild}
		}
		if t.dirichletRNG != nil && leafIdx == t.currentRoot() {
			addDirichletNoise(edges, t.dirichletAlpha, t.dirichletEpsilon, t.dirichletRNG)
		}
		leaf.Edges = edges
		leaf.selfValue = eval.Value
	}
	v := leaf.selfValue
	leaf.mu.Unlock()
	return v, nil
}

// backpropagate adds v to (or subtracts it from) every traversed edge's W:
// a node whose player-to-move matches the expanding leaf's player gets +v,
// every alternating ancestor gets -v. N is incremented unconditionally and
// virtual loss released.
func backpropagate(t *Tree, path []pathStep, leafPlayer board.Player, v float64) {
	for i := len(path) - 1; i >= 0; i-- {
		step := path[i]
		node := t.nodeAt(step.node)
		node.mu.Lock()
		edge := node.Edges[step.edge]
		edge.N++
		if node.Turn.Player == leafPlayer {
			edge.W += v
		} else {
			edge.W -= v
		}
		node.mu.Unlock()
		atomic.AddInt32(&edge.L, -1)
	}
}
