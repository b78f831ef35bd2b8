// Package session bundles an MCTS search with the ply tracking and padding
// configuration needed to serve one ongoing game over the wire, and a
// manager that owns a whole table of such sessions keyed by an
// externally-supplied bgs ID.
package session

import (
	"fmt"

	"wallwars/internal/board"
)

// ManagerConfig is the session manager's engine-wide configuration: the
// model dimensions every session's board gets padded up to, the sampling
// budget each evaluate_position spends, and the hard cap on concurrently
// live sessions.
type ManagerConfig struct {
	SamplesPerMove     int
	MaxParallelSamples int
	BaseSeed           uint32
	ModelColumns       int
	ModelRows          int
	MaxSessions        int
}

// DefaultManagerConfig mirrors BgsEngineConfig's defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		SamplesPerMove:     1000,
		MaxParallelSamples: 4,
		BaseSeed:           42,
		ModelColumns:       8,
		ModelRows:          8,
		MaxSessions:        256,
	}
}

// GameConfig is the wire shape of a start_game_session request's config
// field: variant, game-board dimensions, and the initial position.
type GameConfig struct {
	Variant      string       `json:"variant"`
	BoardWidth   int          `json:"boardWidth"`
	BoardHeight  int          `json:"boardHeight"`
	InitialState InitialState `json:"initialState"`
}

// InitialState is the starting position: each player's pawns, plus any
// walls already on the board.
type InitialState struct {
	Pawns Pawns      `json:"pawns"`
	Walls []WallSpec `json:"walls"`
}

// Pawns holds each player's starting pawn cells, keyed the way the wire
// protocol keys them (p1 is always Red, p2 is always Blue).
type Pawns struct {
	P1 PawnSet `json:"p1"`
	P2 PawnSet `json:"p2"`
}

// PawnSet is one player's pawn cells. Home is the Classic field name for
// the mouse/goal cell; Mouse is the Standard name. Cells are [row, col]
// with row 0 at the top, matching the wire protocol's convention (no
// inversion against the board package's own row-0-at-top convention is
// needed).
type PawnSet struct {
	Cat   [2]int  `json:"cat"`
	Home  *[2]int `json:"home,omitempty"`
	Mouse *[2]int `json:"mouse,omitempty"`
}

// WallSpec is one already-placed wall in the initial position.
type WallSpec struct {
	Cell        [2]int `json:"cell"`
	Orientation string `json:"orientation"` // "vertical" or "horizontal"
	PlayerID    int    `json:"playerId"`    // 1 or 2; defaults to 1 (Red) if zero
}

// validateGameConfig checks the request against mgr before any board is
// built, matching validate_bgs_config: variant must be recognized, and
// both board dimensions must fit between 4 and the manager's model
// dimensions inclusive.
func validateGameConfig(cfg GameConfig, mgr ManagerConfig) (variant board.Variant, err error) {
	v, err := parseVariant(cfg.Variant)
	if err != nil {
		return 0, err
	}
	if cfg.BoardWidth < 4 || cfg.BoardWidth > mgr.ModelColumns {
		return 0, fmt.Errorf("session: boardWidth %d out of range [4, %d]", cfg.BoardWidth, mgr.ModelColumns)
	}
	if cfg.BoardHeight < 4 || cfg.BoardHeight > mgr.ModelRows {
		return 0, fmt.Errorf("session: boardHeight %d out of range [4, %d]", cfg.BoardHeight, mgr.ModelRows)
	}
	return v, nil
}
