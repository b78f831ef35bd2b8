package notation

import (
	"testing"

	"wallwars/internal/board"
)

func TestFormatCellRoundTrip(t *testing.T) {
	rows := 9
	for row := 0; row < rows; row++ {
		for col := 0; col < 5; col++ {
			c := board.Cell{Col: col, Row: row}
			s, err := FormatCell(c, rows)
			if err != nil {
				t.Fatalf("FormatCell(%v): %v", c, err)
			}
			got, err := ParseCell(s, rows)
			if err != nil {
				t.Fatalf("ParseCell(%q): %v", s, err)
			}
			if got != c {
				t.Fatalf("round trip %v -> %q -> %v", c, s, got)
			}
		}
	}
}

func TestFormatCellUsesXForTenthRow(t *testing.T) {
	s, err := FormatCell(board.Cell{Col: 0, Row: 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if s != "aX" {
		t.Fatalf("FormatCell = %q, want %q", s, "aX")
	}
}

func TestFormatWallRoundTrip(t *testing.T) {
	rows := 5
	right := board.Wall{Cell: board.Cell{Col: 1, Row: 2}, Type: board.WallRight}
	s, err := FormatWall(right, rows)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseWall(s, rows)
	if err != nil {
		t.Fatal(err)
	}
	if got != right {
		t.Fatalf("round trip %v -> %q -> %v", right, s, got)
	}

	down := board.Wall{Cell: board.Cell{Col: 1, Row: 2}, Type: board.WallDown}
	s, err = FormatWall(down, rows)
	if err != nil {
		t.Fatal(err)
	}
	got, err = ParseWall(s, rows)
	if err != nil {
		t.Fatal(err)
	}
	if got != down {
		t.Fatalf("round trip %v -> %q -> %v", down, s, got)
	}
}

func TestFormatMoveTwoWalls(t *testing.T) {
	b := board.NewBoard(5, 5, board.Classic)
	m := board.Move{
		First:  board.WallAction(board.Wall{Cell: board.Cell{Col: 1, Row: 1}, Type: board.WallRight}),
		Second: board.WallAction(board.Wall{Cell: board.Cell{Col: 2, Row: 2}, Type: board.WallDown}),
	}
	s, err := FormatMove(b, board.Red, m, 5)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseMove(b, board.Red, 5, s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	if got != m && got != (board.Move{First: m.Second, Second: m.First}) {
		t.Fatalf("round trip move %+v -> %q -> %+v", m, s, got)
	}
}

// TestFormatMoveWallOrderByType picks a Right wall at a cell that sorts
// after the Down wall's cell, so a cell-primary comparator and the correct
// type-primary comparator disagree on the rendered order. Walls sort by
// type (">" before "^") before cell, matching the official notation.
func TestFormatMoveWallOrderByType(t *testing.T) {
	b := board.NewBoard(5, 5, board.Classic)
	m := board.Move{
		First:  board.WallAction(board.Wall{Cell: board.Cell{Col: 3, Row: 3}, Type: board.WallRight}),
		Second: board.WallAction(board.Wall{Cell: board.Cell{Col: 1, Row: 1}, Type: board.WallDown}),
	}
	s, err := FormatMove(b, board.Red, m, 5)
	if err != nil {
		t.Fatal(err)
	}
	const want = ">d2.^b3"
	if s != want {
		t.Fatalf("FormatMove(%+v) = %q, want %q", m, s, want)
	}
}

func TestFormatMoveCumulativeSamePawn(t *testing.T) {
	b := board.NewBoard(5, 5, board.Classic)
	m := board.Move{
		First:  board.PawnMoveAction(board.Cat, board.Right),
		Second: board.PawnMoveAction(board.Cat, board.Down),
	}
	s, err := FormatMove(b, board.Red, m, 5)
	if err != nil {
		t.Fatal(err)
	}
	// Starting at (0,0), Right then Down lands on (1,1).
	want, err := FormatCell(board.Cell{Col: 1, Row: 1}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if s != "C"+want {
		t.Fatalf("FormatMove = %q, want %q", s, "C"+want)
	}

	parsed, err := ParseMove(b, board.Red, 5, s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	working := b.Clone()
	working.DoAction(board.Red, parsed.First)
	working.DoAction(board.Red, parsed.Second)
	if got, want := working.CatPosition(board.Red), (board.Cell{Col: 1, Row: 1}); got != want {
		t.Fatalf("parsed move lands on %v, want %v", got, want)
	}
}

func TestFormatMovePawnAndWall(t *testing.T) {
	b := board.NewBoard(5, 5, board.Standard)
	m := board.Move{
		First:  board.PawnMoveAction(board.Cat, board.Right),
		Second: board.WallAction(board.Wall{Cell: board.Cell{Col: 2, Row: 2}, Type: board.WallDown}),
	}
	s, err := FormatMove(b, board.Red, m, 5)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseMove(b, board.Red, 5, s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	working := b.Clone()
	working.DoAction(board.Red, parsed.First)
	working.DoAction(board.Red, parsed.Second)
	if got, want := working.CatPosition(board.Red), (board.Cell{Col: 1, Row: 0}); got != want {
		t.Fatalf("parsed move's cat lands on %v, want %v", got, want)
	}
}
