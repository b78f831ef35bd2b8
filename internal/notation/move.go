package notation

import (
	"fmt"
	"sort"
	"strings"

	"wallwars/internal/board"
)

// FormatMove renders a full ply in official notation. before is the board
// state prior to the ply; m is applied to a clone of it to recover the
// actual destination cells. When both actions move the same pawn, the
// rendering collapses to that pawn's cumulative destination, e.g. "Cc3"
// rather than two separate components.
func FormatMove(before *board.Board, player board.Player, m board.Move, rows int) (string, error) {
	working := before.Clone()

	var catDest, mouseDest board.Cell
	var catSet, mouseSet bool
	var walls []board.Wall

	apply := func(a board.Action) {
		working.DoAction(player, a)
		switch {
		case a.Kind == board.ActionPawnMove && a.Pawn == board.Cat:
			catDest = working.CatPosition(player)
			catSet = true
		case a.Kind == board.ActionPawnMove && a.Pawn == board.Mouse:
			mouseDest = working.MousePosition(player)
			mouseSet = true
		case a.Kind == board.ActionWall:
			walls = append(walls, a.Wall)
		}
	}
	apply(m.First)
	apply(m.Second)

	var components []string
	if catSet {
		cell, err := FormatCell(catDest, rows)
		if err != nil {
			return "", err
		}
		components = append(components, "C"+cell)
	}
	if mouseSet {
		cell, err := FormatCell(mouseDest, rows)
		if err != nil {
			return "", err
		}
		components = append(components, "M"+cell)
	}

	sort.Slice(walls, func(i, j int) bool { return walls[i].Less(walls[j]) })
	for _, w := range walls {
		s, err := FormatWall(w, rows)
		if err != nil {
			return "", err
		}
		components = append(components, s)
	}

	if len(components) == 0 {
		return "", fmt.Errorf("notation: move has no renderable components")
	}
	return strings.Join(components, "."), nil
}

// ParseMove inverts FormatMove. before is the board state prior to the ply.
// Wall placements within a ply never depend on order, and pawn occupancy
// never affects direction legality, so the single ambiguous case — a wall
// and a pawn step sharing a ply — is resolved by checking the pawn's step
// against the board as it stood before the ply.
func ParseMove(before *board.Board, player board.Player, rows int, s string) (board.Move, error) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 2 {
		return board.Move{}, fmt.Errorf("notation: move %q has %d components, want 1 or 2", s, len(parts))
	}

	var catComponent, mouseComponent string
	var haveCat, haveMouse bool
	var wallActions []board.Action

	for _, p := range parts {
		if p == "" {
			return board.Move{}, fmt.Errorf("notation: move %q has an empty component", s)
		}
		switch p[0] {
		case 'C':
			catComponent = p[1:]
			haveCat = true
		case 'M':
			mouseComponent = p[1:]
			haveMouse = true
		case '>', '^':
			w, err := ParseWall(p, rows)
			if err != nil {
				return board.Move{}, err
			}
			wallActions = append(wallActions, board.WallAction(w))
		default:
			return board.Move{}, fmt.Errorf("notation: move %q has unrecognized component %q", s, p)
		}
	}

	var pawnActions []board.Action
	switch {
	case haveCat && haveMouse:
		dest, err := ParseCell(catComponent, rows)
		if err != nil {
			return board.Move{}, err
		}
		dir, err := resolveSingleStep(before, player, board.Cat, dest)
		if err != nil {
			return board.Move{}, err
		}
		pawnActions = append(pawnActions, board.PawnMoveAction(board.Cat, dir))

		dest, err = ParseCell(mouseComponent, rows)
		if err != nil {
			return board.Move{}, err
		}
		dir, err = resolveSingleStep(before, player, board.Mouse, dest)
		if err != nil {
			return board.Move{}, err
		}
		pawnActions = append(pawnActions, board.PawnMoveAction(board.Mouse, dir))

	case haveCat && len(wallActions) == 1:
		dest, err := ParseCell(catComponent, rows)
		if err != nil {
			return board.Move{}, err
		}
		dir, err := resolveSingleStep(before, player, board.Cat, dest)
		if err != nil {
			return board.Move{}, err
		}
		pawnActions = append(pawnActions, board.PawnMoveAction(board.Cat, dir))

	case haveMouse && len(wallActions) == 1:
		dest, err := ParseCell(mouseComponent, rows)
		if err != nil {
			return board.Move{}, err
		}
		dir, err := resolveSingleStep(before, player, board.Mouse, dest)
		if err != nil {
			return board.Move{}, err
		}
		pawnActions = append(pawnActions, board.PawnMoveAction(board.Mouse, dir))

	case haveCat && !haveMouse && len(wallActions) == 0:
		dest, err := ParseCell(catComponent, rows)
		if err != nil {
			return board.Move{}, err
		}
		d1, d2, err := resolveDoubleStep(before, player, board.Cat, dest)
		if err != nil {
			return board.Move{}, err
		}
		pawnActions = append(pawnActions,
			board.PawnMoveAction(board.Cat, d1),
			board.PawnMoveAction(board.Cat, d2))

	case haveMouse && !haveCat && len(wallActions) == 0:
		dest, err := ParseCell(mouseComponent, rows)
		if err != nil {
			return board.Move{}, err
		}
		d1, d2, err := resolveDoubleStep(before, player, board.Mouse, dest)
		if err != nil {
			return board.Move{}, err
		}
		pawnActions = append(pawnActions,
			board.PawnMoveAction(board.Mouse, d1),
			board.PawnMoveAction(board.Mouse, d2))

	case len(wallActions) == 2:
		// handled below

	default:
		return board.Move{}, fmt.Errorf("notation: move %q does not decompose into exactly two actions", s)
	}

	actions := append(pawnActions, wallActions...)
	if len(actions) != 2 {
		return board.Move{}, fmt.Errorf("notation: move %q decomposed into %d actions, want 2", s, len(actions))
	}
	return board.Move{First: actions[0], Second: actions[1]}, nil
}

func resolveSingleStep(b *board.Board, player board.Player, pawn board.Pawn, dest board.Cell) (board.Direction, error) {
	start := b.PawnPosition(player, pawn)
	for _, dir := range []board.Direction{board.Right, board.Down, board.Left, board.Up} {
		if b.IsBlocked(board.NewWall(start, dir)) {
			continue
		}
		if start.Step(dir) == dest {
			return dir, nil
		}
	}
	return 0, fmt.Errorf("notation: no legal single step from %v to %v", start, dest)
}

func resolveDoubleStep(b *board.Board, player board.Player, pawn board.Pawn, dest board.Cell) (board.Direction, board.Direction, error) {
	start := b.PawnPosition(player, pawn)
	for _, d1 := range []board.Direction{board.Right, board.Down, board.Left, board.Up} {
		if b.IsBlocked(board.NewWall(start, d1)) {
			continue
		}
		mid := start.Step(d1)
		for _, d2 := range []board.Direction{board.Right, board.Down, board.Left, board.Up} {
			if b.IsBlocked(board.NewWall(mid, d2)) {
				continue
			}
			if mid.Step(d2) == dest {
				return d1, d2, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("notation: no legal two-step path from %v to %v", start, dest)
}
