package session

import (
	"fmt"

	"wallwars/internal/board"
	"wallwars/internal/padding"
)

func parseVariant(s string) (board.Variant, error) {
	switch s {
	case "classic":
		return board.Classic, nil
	case "standard":
		return board.Standard, nil
	default:
		return 0, fmt.Errorf("session: unknown variant %q", s)
	}
}

// parseCell converts a wire [row, col] pair into a board.Cell.
func parseCell(rc [2]int) board.Cell {
	return board.Cell{Row: rc[0], Col: rc[1]}
}

// pawnGoalCell returns the game-space cell a PawnSet names as its
// mouse/goal, accepting either the Classic "home" field or the Standard
// "mouse" field (whichever is present).
func pawnGoalCell(p PawnSet) [2]int {
	if p.Home != nil {
		return *p.Home
	}
	if p.Mouse != nil {
		return *p.Mouse
	}
	return [2]int{}
}

// parseWallSpec normalizes a wire wall spec into a game-space board.Wall
// plus its owner. "vertical" is a Right wall at the named cell;
// "horizontal" is a Down wall at the cell directly above it, matching
// parse_wall's normalization.
func parseWallSpec(w WallSpec) (board.Wall, board.Player, error) {
	cell := parseCell(w.Cell)
	var wall board.Wall
	switch w.Orientation {
	case "vertical":
		wall = board.Wall{Cell: cell, Type: board.WallRight}
	case "horizontal":
		wall = board.Wall{Cell: board.Cell{Col: cell.Col, Row: cell.Row - 1}, Type: board.WallDown}
	default:
		return board.Wall{}, 0, fmt.Errorf("session: unknown wall orientation %q", w.Orientation)
	}
	player := board.Red
	if w.PlayerID == 2 {
		player = board.Blue
	}
	return wall, player, nil
}

// buildBoard validates cfg against mgr, then constructs the model-sized
// board a session's MCTS searches over: pawns at their translated
// initialState positions (Classic mice pinned to the model's corner
// goals, matching convert_bgs_config_to_board's handling of the original
// engine's fixed goal-marker semantics), padding walls sealing off the
// unused model region, then every initialState wall translated into model
// space and placed by its owner.
func buildBoard(cfg GameConfig, mgr ManagerConfig) (*board.Board, padding.Config, error) {
	variant, err := validateGameConfig(cfg, mgr)
	if err != nil {
		return nil, padding.Config{}, err
	}

	pc := padding.Config{
		ModelColumns: mgr.ModelColumns,
		ModelRows:    mgr.ModelRows,
		GameColumns:  cfg.BoardWidth,
		GameRows:     cfg.BoardHeight,
		Variant:      variant,
	}

	redCat := pc.ToModelCell(parseCell(cfg.InitialState.Pawns.P1.Cat))
	blueCat := pc.ToModelCell(parseCell(cfg.InitialState.Pawns.P2.Cat))

	var redMouse, blueMouse board.Cell
	if variant == board.Classic {
		redMouse = pc.ClassicGoal(board.Red)
		blueMouse = pc.ClassicGoal(board.Blue)
	} else {
		redMouse = pc.ToModelCell(parseCell(pawnGoalCell(cfg.InitialState.Pawns.P1)))
		blueMouse = pc.ToModelCell(parseCell(pawnGoalCell(cfg.InitialState.Pawns.P2)))
	}

	b := board.NewBoardWithPositions(mgr.ModelColumns, mgr.ModelRows, variant,
		redCat, redMouse, blueCat, blueMouse)
	padding.PlacePaddingWalls(b, pc)

	for _, ws := range cfg.InitialState.Walls {
		gameWall, owner, err := parseWallSpec(ws)
		if err != nil {
			return nil, padding.Config{}, err
		}
		modelWall := board.Wall{Cell: pc.ToModelCell(gameWall.Cell), Type: gameWall.Type}
		if b.IsBlocked(modelWall) {
			continue
		}
		b.PlaceWall(owner, modelWall)
	}

	return b, pc, nil
}
