// Package notation formats and parses Wallwars moves (pawn destinations and
// wall placements) in the official game coordinate space: columns a.., rows
// numbered from the bottom as 1..9 then X for 10.
package notation

import (
	"fmt"

	"wallwars/internal/board"
)

// FormatCell renders cell in official notation given the board's row
// count: column as a letter starting at 'a', row counted from the bottom
// (1..9 then X).
func FormatCell(c board.Cell, rows int) (string, error) {
	if c.Col < 0 || c.Col >= 26 {
		return "", fmt.Errorf("notation: column %d out of range", c.Col)
	}
	officialRow := rows - c.Row
	if officialRow < 1 || officialRow > 10 {
		return "", fmt.Errorf("notation: row %d out of range for board with %d rows", c.Row, rows)
	}
	colLetter := byte('a' + c.Col)
	if officialRow == 10 {
		return fmt.Sprintf("%cX", colLetter), nil
	}
	return fmt.Sprintf("%c%d", colLetter, officialRow), nil
}

// ParseCell inverts FormatCell.
func ParseCell(s string, rows int) (board.Cell, error) {
	if len(s) < 2 {
		return board.Cell{}, fmt.Errorf("notation: cell %q too short", s)
	}
	col := int(s[0] - 'a')
	if col < 0 || col > 25 {
		return board.Cell{}, fmt.Errorf("notation: invalid column in %q", s)
	}

	rowPart := s[1:]
	var officialRow int
	if rowPart == "X" {
		officialRow = 10
	} else {
		n, err := parseDigits(rowPart)
		if err != nil {
			return board.Cell{}, fmt.Errorf("notation: invalid row in %q: %w", s, err)
		}
		officialRow = n
	}
	if officialRow < 1 || officialRow > 10 {
		return board.Cell{}, fmt.Errorf("notation: row out of range in %q", s)
	}

	return board.Cell{Col: col, Row: rows - officialRow}, nil
}

func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("non-digit %q", ch)
		}
		n = n*10 + int(ch-'0')
	}
	return n, nil
}
