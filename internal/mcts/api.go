package mcts

import (
	"fmt"

	"wallwars/internal/board"
)

// PeekBestAction returns the root edge with the highest visit count among
// edges whose child has actually been explored (Child != noChild); a root
// edge selected zero times is ineligible. It does not mutate the tree.
// Ties break by edge order. ok is false if the root has no explored edges
// (unexpanded root, or Sample has not yet run).
func (t *Tree) PeekBestAction() (action board.Action, ok bool) {
	root := t.nodeAt(t.currentRoot())
	root.mu.Lock()
	defer root.mu.Unlock()
	return peekBestEdgeLocked(root)
}

// peekBestEdgeLocked requires node.mu held by the caller.
func peekBestEdgeLocked(node *Node) (board.Action, bool) {
	best := int64(-1)
	var bestAction board.Action
	found := false
	for _, e := range node.Edges {
		if e.Child == noChild {
			continue
		}
		if e.N > best {
			best = e.N
			bestAction = e.Action
			found = true
		}
	}
	return bestAction, found
}

// PeekBestMove peeks the root's best action, then, if its child exists and
// has been expanded, peeks that child's best action to form a full Move.
// It does not mutate the tree (it does not spawn children that don't
// already exist). ok is false whenever either half cannot be determined.
func (t *Tree) PeekBestMove() (board.Move, bool) {
	root := t.nodeAt(t.currentRoot())

	root.mu.Lock()
	first, ok := peekBestEdgeLocked(root)
	var childIdx int32 = noChild
	if ok {
		for _, e := range root.Edges {
			if e.Action == first {
				childIdx = e.Child
				break
			}
		}
	}
	root.mu.Unlock()

	if !ok || childIdx == noChild {
		return board.Move{}, false
	}

	child := t.nodeAt(childIdx)
	child.mu.Lock()
	expanded := child.Edges != nil
	var second board.Action
	var ok2 bool
	if expanded {
		second, ok2 = peekBestEdgeLocked(child)
	}
	child.mu.Unlock()

	if !ok2 {
		return board.Move{}, false
	}
	return board.Move{First: first, Second: second}, true
}

// RootPosition returns the board and turn the current root stands for, for
// callers (internal/session) that need to format notation or re-derive
// legal actions without reaching into the tree's internals. The returned
// board must not be mutated; callers that need to experiment with it
// should Clone it first.
func (t *Tree) RootPosition() (*board.Board, board.Turn) {
	root := t.nodeAt(t.currentRoot())
	return root.Board, root.Turn
}

// RootValue returns W_root / max(1, N_root) in [-1, 1], from the
// perspective of the player whose turn the root is. N_root and W_root
// include the root's own expansion sample alongside its edges' sums: a
// node's N is always its edges' N summed plus 1 for its own expansion.
func (t *Tree) RootValue() float64 {
	root := t.nodeAt(t.currentRoot())
	root.mu.Lock()
	defer root.mu.Unlock()

	var sumN int64
	var sumW float64
	for _, e := range root.Edges {
		sumN += e.N
		sumW += e.W
	}
	n := sumN + 1
	w := sumW + root.selfValue
	return w / float64(max(int64(1), n))
}

// CommitToAction permanently advances the root to PeekBestAction's result,
// discarding sibling subtrees (and the arena space they occupied).
func (t *Tree) CommitToAction() (board.Action, error) {
	t.structMu.Lock()
	defer t.structMu.Unlock()

	root := t.nodeAt(t.currentRoot())
	root.mu.Lock()
	action, ok := peekBestEdgeLocked(root)
	var childIdx int32 = noChild
	if ok {
		for _, e := range root.Edges {
			if e.Action == action {
				childIdx = e.Child
				break
			}
		}
	}
	root.mu.Unlock()

	if !ok || childIdx == noChild {
		return board.Action{}, fmt.Errorf("mcts: no explored root action to commit to")
	}
	t.replaceRoot(childIdx)
	return action, nil
}

// ForceMove advances the root past both of move's actions, taking the
// matching edge (and its explored subtree) where the tree already has one,
// and spawning a fresh unexpanded node otherwise. It fails if either action
// is not legal at its respective turn.
func (t *Tree) ForceMove(m board.Move) error {
	t.structMu.Lock()
	defer t.structMu.Unlock()

	rootIdx := t.currentRoot()
	root := t.nodeAt(rootIdx)

	if !isLegal(root.Board, root.Turn.Player, m.First) {
		return fmt.Errorf("mcts: action %v is not legal for %v to move", m.First, root.Turn.Player)
	}
	firstIdx := t.findOrSpawnChild(rootIdx, m.First)

	mid := t.nodeAt(firstIdx)
	turn2 := root.Turn.Next()
	if !isLegal(mid.Board, turn2.Player, m.Second) {
		return fmt.Errorf("mcts: action %v is not legal for %v to move", m.Second, turn2.Player)
	}
	secondIdx := t.findOrSpawnChild(firstIdx, m.Second)

	t.replaceRoot(secondIdx)
	return nil
}

func isLegal(b *board.Board, player board.Player, a board.Action) bool {
	for _, legal := range b.LegalActions(player) {
		if legal == a {
			return true
		}
	}
	return false
}

// findOrSpawnChild returns the existing child of node's edge for action if
// one is already in the arena. If the edge exists without a child, a fresh
// child is spawned and linked to it; if node has no edge for action (not
// yet expanded, or the action was excluded from its edges), a fresh node
// is spawned that no edge points to.
func (t *Tree) findOrSpawnChild(nodeIdx int32, action board.Action) int32 {
	node := t.nodeAt(nodeIdx)
	node.mu.Lock()
	defer node.mu.Unlock()

	for _, e := range node.Edges {
		if e.Action == action {
			if e.Child == noChild {
				child := spawnChild(node, action)
				e.Child = t.appendNode(child)
			}
			return e.Child
		}
	}
	child := spawnChild(node, action)
	return t.appendNode(child)
}

// replaceRoot rebuilds the arena to contain only the subtree reachable
// from newRoot (an index into the current arena), discarding every
// sibling node so abandoned subtrees become garbage. Advancing the root
// is done by replacing the whole arena with the chosen subtree rather than
// pruning in place, keeping node indices inside the new arena contiguous.
func (t *Tree) replaceRoot(newRoot int32) {
	t.arenaMu.Lock()
	oldArena := t.arena
	t.arenaMu.Unlock()

	newArena := compactSubtree(oldArena, newRoot)

	t.arenaMu.Lock()
	t.arena = newArena
	t.arenaMu.Unlock()

	t.rootMu.Lock()
	t.root = 0
	t.rootMu.Unlock()
}

// compactSubtree copies every node reachable from root (breadth-first) into
// a fresh slice and rewrites every kept edge's Child to the new indices.
// The returned root is always at index 0.
func compactSubtree(arena []*Node, root int32) []*Node {
	indexOf := map[int32]int32{root: 0}
	order := []int32{root}
	for i := 0; i < len(order); i++ {
		node := arena[order[i]]
		for _, e := range node.Edges {
			if e.Child == noChild {
				continue
			}
			if _, seen := indexOf[e.Child]; !seen {
				indexOf[e.Child] = int32(len(order))
				order = append(order, e.Child)
			}
		}
	}

	newArena := make([]*Node, len(order))
	for newIdx, oldIdx := range order {
		newArena[newIdx] = arena[oldIdx]
	}
	for _, node := range newArena {
		node.mu.Lock()
		for _, e := range node.Edges {
			if e.Child != noChild {
				e.Child = indexOf[e.Child]
			}
		}
		node.mu.Unlock()
	}
	return newArena
}
