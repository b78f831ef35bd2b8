// Package evaluator defines the evaluator contract MCTS searches against:
// given a board position it produces a value estimate and a prior
// distribution over legal actions.
package evaluator

import (
	"context"

	"wallwars/internal/board"
)

// PrevPosition names the cell a specific pawn just vacated, used to
// suppress immediately undoing a move (backtracking) when generating
// priors.
type PrevPosition struct {
	Pawn board.Pawn
	Cell board.Cell
}

// EdgePrior pairs a legal action with its prior probability.
type EdgePrior struct {
	Action board.Action
	Prior  float64
}

// Evaluation is an evaluator's verdict on a position: a value in [-1,1]
// from the perspective of the player to move, and a prior over every legal
// action except the backtrack.
type Evaluation struct {
	Value float64
	Edges []EdgePrior
}

// Evaluator produces an Evaluation for a board position. Implementations
// may suspend internally (batching, cache joins); ctx cancellation must
// release the caller without corrupting any shared state the evaluator
// holds — in particular, abandoning a request must not cancel in-flight
// batched work for other callers.
type Evaluator interface {
	Evaluate(ctx context.Context, b *board.Board, turn board.Turn, prev *PrevPosition) (Evaluation, error)
}

// Normalize divides every edge's prior by the sum of all priors, so they
// sum to 1. It is a no-op (returns edges unchanged) if the sum is zero or
// edges is empty, since there is nothing meaningful to normalize against.
func Normalize(edges []EdgePrior) []EdgePrior {
	var sum float64
	for _, e := range edges {
		sum += e.Prior
	}
	if sum <= 0 {
		return edges
	}
	out := make([]EdgePrior, len(edges))
	for i, e := range edges {
		out[i] = EdgePrior{Action: e.Action, Prior: e.Prior / sum}
	}
	return out
}

// ExcludeBacktrack drops the action that would move prev.Pawn back onto
// prev.Cell, then renormalizes the remaining priors to sum to 1. Edges for
// every other legal action are preserved as-is aside from renormalization.
func ExcludeBacktrack(edges []EdgePrior, b *board.Board, player board.Player, prev *PrevPosition) []EdgePrior {
	if prev == nil {
		return Normalize(edges)
	}
	filtered := make([]EdgePrior, 0, len(edges))
	for _, e := range edges {
		if e.Action.Kind == board.ActionPawnMove && e.Action.Pawn == prev.Pawn {
			start := b.PawnPosition(player, e.Action.Pawn)
			if start.Step(e.Action.Direction) == prev.Cell {
				continue
			}
		}
		filtered = append(filtered, e)
	}
	return Normalize(filtered)
}
