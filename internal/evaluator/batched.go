package evaluator

import (
	"context"
	"fmt"

	"wallwars/internal/batch"
	"wallwars/internal/board"
)

// batchModel is satisfied by *batch.BatchedModel; declared as an interface
// so tests can substitute a fake model without spinning up a real pool.
type batchModel interface {
	Inference(ctx context.Context, input []float32) (batch.Output, error)
}

// Batched is an Evaluator backed by a batched neural network: it encodes a
// position into fixed-size feature planes, runs inference through model,
// and decodes the returned prior vector back into per-action EdgePriors.
//
// Grounded on deep-wallwars's BatchedModelPolicy::operator()
// (batched_model_policy.cpp): priors are laid out as [wall priors (2 planes
// of columns*rows, Right then Down, cell index column-major) | cat move
// priors (4, in Right/Down/Left/Up order) | mouse move priors (4, same
// order, only present/legal in Standard)]. Since the original's
// convert_to_model_input feature-plane layout was not present in the
// retrieved source, the state encoding here is a from-scratch
// reconstruction grounded only in Model's channel-count constructor
// (model.cpp's `columns*rows*channels` state size): one plane per
// (player, pawn) occupancy, one plane per (player, wall orientation)
// ownership, and a constant to-move plane, channel-major (CHW) layout.
type Batched struct {
	model   batchModel
	columns int
	rows    int
}

// channels: red cat, blue cat, red mouse, blue mouse, red right-wall, blue
// right-wall, red down-wall, blue down-wall, to-move.
const featureChannels = 9

// NewBatched wraps model as an Evaluator over a fixed columns x rows board
// (the model's padded dimensions).
func NewBatched(model batchModel, columns, rows int) *Batched {
	return &Batched{model: model, columns: columns, rows: rows}
}

func (e *Batched) Evaluate(ctx context.Context, b *board.Board, turn board.Turn, prev *PrevPosition) (Evaluation, error) {
	if b.Columns != e.columns || b.Rows != e.rows {
		return Evaluation{}, fmt.Errorf("evaluator: board is %dx%d, model expects %dx%d", b.Columns, b.Rows, e.columns, e.rows)
	}

	input := encodeFeatures(b, turn, e.columns, e.rows)
	out, err := e.model.Inference(ctx, input)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluator: batched inference: %w", err)
	}

	wallPriorSize := 2 * e.columns * e.rows
	wantPriors := wallPriorSize + 4
	if b.AllowsMouseMoves() {
		wantPriors += 4
	}
	if len(out.Priors) < wantPriors {
		return Evaluation{}, fmt.Errorf("evaluator: model returned %d priors, want at least %d", len(out.Priors), wantPriors)
	}

	edges := decodeEdges(b, turn, prev, out.Priors, e.columns, e.rows)
	return Evaluation{Value: out.Value, Edges: edges}, nil
}

// cellIndex matches deep-wallwars's Board::index_from_cell: column-major.
func cellIndex(c board.Cell, rows int) int {
	return c.Col*rows + c.Row
}

func encodeFeatures(b *board.Board, turn board.Turn, columns, rows int) []float32 {
	planeSize := columns * rows
	input := make([]float32, featureChannels*planeSize)

	setPlane := func(channel int, c board.Cell) {
		input[channel*planeSize+cellIndex(c, rows)] = 1
	}
	setPlane(0, b.CatPosition(board.Red))
	setPlane(1, b.CatPosition(board.Blue))
	setPlane(2, b.MousePosition(board.Red))
	setPlane(3, b.MousePosition(board.Blue))

	for col := 0; col < columns; col++ {
		for row := 0; row < rows; row++ {
			cell := board.Cell{Col: col, Row: row}
			idx := cellIndex(cell, rows)
			if owner, ok := b.WallOwner(board.Wall{Cell: cell, Type: board.WallRight}); ok {
				channel := 4
				if owner == board.Blue {
					channel = 5
				}
				input[channel*planeSize+idx] = 1
			}
			if owner, ok := b.WallOwner(board.Wall{Cell: cell, Type: board.WallDown}); ok {
				channel := 6
				if owner == board.Blue {
					channel = 7
				}
				input[channel*planeSize+idx] = 1
			}
		}
	}

	if turn.Player == board.Blue {
		base := 8 * planeSize
		for i := 0; i < planeSize; i++ {
			input[base+i] = 1
		}
	}

	return input
}

func decodeEdges(b *board.Board, turn board.Turn, prev *PrevPosition, priors []float64, columns, rows int) []EdgePrior {
	planeSize := columns * rows
	var edges []EdgePrior

	addPawnMoves := func(pawn board.Pawn, offset int) {
		for _, dir := range b.LegalDirections(turn.Player, pawn) {
			edges = append(edges, EdgePrior{
				Action: board.PawnMoveAction(pawn, dir),
				Prior:  priors[offset+int(dir)],
			})
		}
	}

	addPawnMoves(board.Cat, 2*planeSize)
	if b.AllowsMouseMoves() {
		addPawnMoves(board.Mouse, 2*planeSize+4)
	}

	for _, w := range b.LegalWalls() {
		index := int(w.Type)*planeSize + cellIndex(w.Cell, rows)
		edges = append(edges, EdgePrior{Action: board.WallAction(w), Prior: priors[index]})
	}

	return ExcludeBacktrack(edges, b, turn.Player, prev)
}
