package evaluator

import (
	"context"

	"wallwars/internal/board"
)

// Heuristic is a non-ML evaluator: pawn priors are biased toward moves that
// improve (for the cat) or worsen (for the mouse, away from the opponent
// cat) the mover's BFS distance to its goal; walls split the remaining
// prior mass evenly. Value is the board's own distance-ratio heuristic.
//
// The functional-options construction follows
// christopherWilliams98-risk-agent's searcher configuration pattern (Option func(*T), defaults applied before options
// run).
type Heuristic struct {
	goodMoveBias float64
	badMoveBias  float64
	movePrior    float64
}

// Option configures a Heuristic evaluator.
type Option func(*Heuristic)

// WithGoodMoveBias sets the prior weight given to a pawn move that
// improves its distance to goal. Default 2.0.
func WithGoodMoveBias(bias float64) Option {
	return func(h *Heuristic) {
		if bias > 0 {
			h.goodMoveBias = bias
		}
	}
}

// WithBadMoveBias sets the prior weight given to a pawn move that worsens
// its distance to goal. Default 0.5.
func WithBadMoveBias(bias float64) Option {
	return func(h *Heuristic) {
		if bias > 0 {
			h.badMoveBias = bias
		}
	}
}

// WithMovePrior sets the fraction of total prior mass reserved for pawn
// moves, in [0,1]. The remainder is split evenly across legal walls.
// Default 0.5.
func WithMovePrior(p float64) Option {
	return func(h *Heuristic) {
		if p >= 0 && p <= 1 {
			h.movePrior = p
		}
	}
}

// NewHeuristic builds a Heuristic evaluator with defaults, then applies
// opts.
func NewHeuristic(opts ...Option) *Heuristic {
	h := &Heuristic{
		goodMoveBias: 2.0,
		badMoveBias:  0.5,
		movePrior:    0.5,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Evaluate implements Evaluator.
func (h *Heuristic) Evaluate(ctx context.Context, b *board.Board, turn board.Turn, prev *PrevPosition) (Evaluation, error) {
	select {
	case <-ctx.Done():
		return Evaluation{}, ctx.Err()
	default:
	}

	player := turn.Player
	goal := b.Goal(player)
	opponent := player.Other()

	var pawnEdges []EdgePrior
	catPos := b.PawnPosition(player, board.Cat)
	catDist := b.Distance(catPos, goal)
	for _, dir := range b.LegalDirections(player, board.Cat) {
		next := catPos.Step(dir)
		nextDist := b.Distance(next, goal)
		pawnEdges = append(pawnEdges, EdgePrior{
			Action: board.PawnMoveAction(board.Cat, dir),
			Prior:  h.bias(catDist, nextDist, true),
		})
	}

	if b.AllowsMouseMoves() {
		mousePos := b.PawnPosition(player, board.Mouse)
		opponentCat := b.PawnPosition(opponent, board.Cat)
		mouseDistFromOpponentCat := b.Distance(mousePos, opponentCat)
		for _, dir := range b.LegalDirections(player, board.Mouse) {
			next := mousePos.Step(dir)
			nextDist := b.Distance(next, opponentCat)
			// The mouse is biased away from the opponent's cat: a good
			// move is one that *increases* distance, the opposite sense
			// from the cat's bias toward its goal.
			pawnEdges = append(pawnEdges, EdgePrior{
				Action: board.PawnMoveAction(board.Mouse, dir),
				Prior:  h.bias(mouseDistFromOpponentCat, nextDist, false),
			})
		}
	}

	pawnEdges = scaleToSum(pawnEdges, h.movePrior)

	walls := b.LegalWalls()
	wallEdges := make([]EdgePrior, len(walls))
	if len(walls) > 0 {
		wallPrior := (1 - h.movePrior) / float64(len(walls))
		for i, w := range walls {
			wallEdges[i] = EdgePrior{Action: board.WallAction(w), Prior: wallPrior}
		}
	}

	edges := append(pawnEdges, wallEdges...)
	edges = ExcludeBacktrack(edges, b, player, prev)

	return Evaluation{
		Value: b.ScoreFor(player),
		Edges: edges,
	}, nil
}

// bias returns goodMoveBias for the favorable direction and badMoveBias for
// the unfavorable one, or 1.0 when distance is unchanged or either
// distance is unreachable (-1). When closerIsGood is true (the cat),
// decreasing distance is favorable; when false (the mouse), increasing
// distance is favorable.
func (h *Heuristic) bias(before, after int, closerIsGood bool) float64 {
	if before == -1 || after == -1 || after == before {
		return 1.0
	}
	improved := after < before
	if !closerIsGood {
		improved = !improved
	}
	if improved {
		return h.goodMoveBias
	}
	return h.badMoveBias
}

func scaleToSum(edges []EdgePrior, target float64) []EdgePrior {
	var sum float64
	for _, e := range edges {
		sum += e.Prior
	}
	if sum <= 0 {
		return edges
	}
	out := make([]EdgePrior, len(edges))
	for i, e := range edges {
		out[i] = EdgePrior{Action: e.Action, Prior: e.Prior / sum * target}
	}
	return out
}
