package notation

import (
	"fmt"

	"wallwars/internal/board"
)

// FormatWall renders a wall as ">"+cell for a right wall, or "^"+cell for a
// down wall, where cell for a down wall is the cell immediately below the
// wall (the cell it separates from the one above), matching the official
// game's bottom-up row numbering.
func FormatWall(w board.Wall, rows int) (string, error) {
	switch w.Type {
	case board.WallRight:
		cell, err := FormatCell(w.Cell, rows)
		if err != nil {
			return "", err
		}
		return ">" + cell, nil
	case board.WallDown:
		below := board.Cell{Col: w.Cell.Col, Row: w.Cell.Row + 1}
		cell, err := FormatCell(below, rows)
		if err != nil {
			return "", err
		}
		return "^" + cell, nil
	default:
		return "", fmt.Errorf("notation: unknown wall type %v", w.Type)
	}
}

// ParseWall inverts FormatWall.
func ParseWall(s string, rows int) (board.Wall, error) {
	if len(s) < 2 {
		return board.Wall{}, fmt.Errorf("notation: wall %q too short", s)
	}
	cell, err := ParseCell(s[1:], rows)
	if err != nil {
		return board.Wall{}, fmt.Errorf("notation: wall %q: %w", s, err)
	}
	switch s[0] {
	case '>':
		return board.Wall{Cell: cell, Type: board.WallRight}, nil
	case '^':
		return board.Wall{Cell: board.Cell{Col: cell.Col, Row: cell.Row - 1}, Type: board.WallDown}, nil
	default:
		return board.Wall{}, fmt.Errorf("notation: wall %q has unknown prefix %q", s, s[0])
	}
}
