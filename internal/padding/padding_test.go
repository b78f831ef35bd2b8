package padding

import (
	"testing"

	"wallwars/internal/board"
	"wallwars/internal/notation"
)

func standardConfig() Config {
	return Config{ModelColumns: 8, ModelRows: 8, GameColumns: 5, GameRows: 5, Variant: board.Standard}
}

func classicConfig() Config {
	return Config{ModelColumns: 8, ModelRows: 8, GameColumns: 5, GameRows: 5, Variant: board.Classic}
}

func TestStandardOffsetsAreTopLeft(t *testing.T) {
	col, row := standardConfig().Offsets()
	if col != 0 || row != 0 {
		t.Fatalf("standard offsets = (%d,%d), want (0,0)", col, row)
	}
}

func TestClassicOffsetsAreBottomLeftBiased(t *testing.T) {
	c := classicConfig()
	col, row := c.Offsets()
	if row != 3 {
		t.Fatalf("row offset = %d, want 3 (model_rows - game_rows)", row)
	}
	if col != 1 {
		t.Fatalf("col offset = %d, want 1 (floor((8-5)/2))", col)
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	c := classicConfig()
	for row := 0; row < c.GameRows; row++ {
		for col := 0; col < c.GameColumns; col++ {
			game := board.Cell{Col: col, Row: row}
			model := c.ToModelCell(game)
			got, ok := c.ToGameCell(model)
			if !ok {
				t.Fatalf("ToGameCell(%v) reported out of range", model)
			}
			if got != game {
				t.Fatalf("round trip %v -> %v -> %v", game, model, got)
			}
		}
	}
}

func TestToGameCellOutsideRectangleFails(t *testing.T) {
	c := classicConfig()
	if _, ok := c.ToGameCell(board.Cell{Col: 0, Row: 0}); ok {
		t.Fatal("cell in padding region should not translate to a game cell")
	}
}

func TestClassicModelBoardUsesCornerGoals(t *testing.T) {
	c := classicConfig()
	b := NewModelBoard(c)
	if got, want := b.MousePosition(board.Red), (board.Cell{Col: 0, Row: 7}); got != want {
		t.Fatalf("red mouse (goal marker) = %v, want %v", got, want)
	}
	if got, want := b.MousePosition(board.Blue), (board.Cell{Col: 7, Row: 7}); got != want {
		t.Fatalf("blue mouse (goal marker) = %v, want %v", got, want)
	}
}

func TestClassicPaddingLeavesBottomRowVerticalWallsOpen(t *testing.T) {
	c := classicConfig()
	b := NewModelBoard(c)
	// Bottom row is model row 7; the game rectangle spans columns 1..5.
	// A Right wall at (0,7), strictly in the padding region, must remain
	// open so the cat can walk along the bottom row into the corner goal.
	if b.IsBlocked(board.Wall{Cell: board.Cell{Col: 0, Row: 7}, Type: board.WallRight}) {
		t.Fatal("bottom-row vertical wall in padding should remain open for classic corner goals")
	}
}

func TestPaddingBlocksEscapeFromGameRectangle(t *testing.T) {
	c := classicConfig()
	b := NewModelBoard(c)
	colOffset, rowOffset := c.Offsets()
	// Top-left corner of the game rectangle: stepping Up or Left must be
	// blocked by a padding wall (this row is not the bottom row).
	corner := board.Cell{Col: colOffset, Row: rowOffset}
	if !b.IsBlocked(board.NewWall(corner, board.Up)) {
		t.Fatal("stepping up out of the game rectangle should be blocked by a padding wall")
	}
	if !b.IsBlocked(board.NewWall(corner, board.Left)) {
		t.Fatal("stepping left out of the game rectangle should be blocked by a padding wall")
	}
}

func TestTranslateMoveNotationRoundTrip(t *testing.T) {
	c := classicConfig()
	s, err := TranslateMoveNotation(c, "Cb1")
	if err != nil {
		t.Fatal(err)
	}
	back, err := TranslateNotationToGame(c, s)
	if err != nil {
		t.Fatalf("TranslateNotationToGame(%q): %v", s, err)
	}
	if back != "Cb1" {
		t.Fatalf("round trip = %q, want %q", back, "Cb1")
	}
}

func TestTranslateNotationToGameClampsCornerGoal(t *testing.T) {
	c := classicConfig()
	// Model-space corner goal (0, model_rows-1) falls outside the game
	// rectangle (columns 1..5); it must clamp onto the game rectangle's
	// bottom row instead of failing.
	s, err := notation.FormatCell(board.Cell{Col: 0, Row: c.ModelRows - 1}, c.ModelRows)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := TranslateNotationToGame(c, "C"+s); err != nil {
		t.Fatalf("clamped translation should not fail: %v", err)
	}
}
