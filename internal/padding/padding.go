// Package padding embeds a smaller game-sized board inside a fixed
// model-sized grid, so a single trained network can serve boards of many
// sizes. It translates coordinates and notation between the two spaces and
// walls off the padding region so search never escapes into it.
package padding

import (
	"fmt"

	"wallwars/internal/board"
	"wallwars/internal/notation"
)

// Config describes how a game-sized board embeds into a model-sized grid.
type Config struct {
	ModelColumns int
	ModelRows    int
	GameColumns  int
	GameRows     int
	Variant      board.Variant
}

// Offsets returns the (column, row) offset at which the game rectangle sits
// within the model grid. Standard embeds at the top-left (0,0); Classic
// embeds at the bottom, horizontally centered with a left bias.
func (c Config) Offsets() (colOffset, rowOffset int) {
	if c.Variant == board.Standard {
		return 0, 0
	}
	return (c.ModelColumns - c.GameColumns) / 2, c.ModelRows - c.GameRows
}

// ToModelCell translates a game-space cell into model space.
func (c Config) ToModelCell(game board.Cell) board.Cell {
	colOffset, rowOffset := c.Offsets()
	return board.Cell{Col: game.Col + colOffset, Row: game.Row + rowOffset}
}

// ToGameCell inverts ToModelCell, failing if model falls outside the game
// rectangle.
func (c Config) ToGameCell(model board.Cell) (board.Cell, bool) {
	colOffset, rowOffset := c.Offsets()
	game := board.Cell{Col: model.Col - colOffset, Row: model.Row - rowOffset}
	if game.Col < 0 || game.Col >= c.GameColumns || game.Row < 0 || game.Row >= c.GameRows {
		return board.Cell{}, false
	}
	return game, true
}

// ClassicGoal returns the model-space corner goal for player in the
// Classic variant: the game mouse's own position is ignored in favor of
// the fixed model-corner goals. Exported for internal/session, which
// builds boards from explicit initialState pawn positions rather than
// NewModelBoard's defaults.
func (c Config) ClassicGoal(player board.Player) board.Cell {
	if player == board.Red {
		return board.Cell{Col: 0, Row: c.ModelRows - 1}
	}
	return board.Cell{Col: c.ModelColumns - 1, Row: c.ModelRows - 1}
}

// NewModelBoard builds a model-sized board with pawns placed at the
// translated game starting positions. In Classic, the mice sit on the
// model corners rather than the game rectangle's corners.
func NewModelBoard(c Config) *board.Board {
	game := board.NewBoard(c.GameColumns, c.GameRows, c.Variant)

	redCat := c.ToModelCell(game.CatPosition(board.Red))
	blueCat := c.ToModelCell(game.CatPosition(board.Blue))

	var redMouse, blueMouse board.Cell
	if c.Variant == board.Classic {
		redMouse = c.ClassicGoal(board.Red)
		blueMouse = c.ClassicGoal(board.Blue)
	} else {
		redMouse = c.ToModelCell(game.MousePosition(board.Red))
		blueMouse = c.ToModelCell(game.MousePosition(board.Blue))
	}

	model := board.NewBoardWithPositions(c.ModelColumns, c.ModelRows, c.Variant,
		redCat, redMouse, blueCat, blueMouse)
	PlacePaddingWalls(model, c)
	return model
}

// PlacePaddingWalls walls off every edge of the game rectangle that faces
// padding and every edge inside the padding itself, so pawn movement and
// wall placement can never cross into the unused region. Ownership of a padding wall is nominal (Red): both
// players' wall bits block movement identically, and padding walls never
// participate in a player's placed-wall count.
//
// Classic exception: vertical (Right) walls along the model's bottom row
// are left open, so the cat can walk sideways off the game rectangle and
// reach the corner goal even when the game is narrower than the model.
func PlacePaddingWalls(b *board.Board, c Config) {
	colOffset, rowOffset := c.Offsets()
	left := colOffset
	right := colOffset + c.GameColumns - 1
	top := rowOffset
	bottom := rowOffset + c.GameRows - 1

	skipVerticalRow := -1
	if c.Variant == board.Classic {
		skipVerticalRow = c.ModelRows - 1
	}

	place := func(w board.Wall) {
		if b.IsBlocked(w) {
			return
		}
		b.PlaceWall(board.Red, w)
	}

	for row := top; row <= bottom; row++ {
		if row != skipVerticalRow {
			if left > 0 {
				place(board.Wall{Cell: board.Cell{Col: left - 1, Row: row}, Type: board.WallRight})
			}
			if right < c.ModelColumns-1 {
				place(board.Wall{Cell: board.Cell{Col: right, Row: row}, Type: board.WallRight})
			}
		}
	}
	for col := left; col <= right; col++ {
		if top > 0 {
			place(board.Wall{Cell: board.Cell{Col: col, Row: top - 1}, Type: board.WallDown})
		}
		if bottom < c.ModelRows-1 {
			place(board.Wall{Cell: board.Cell{Col: col, Row: bottom}, Type: board.WallDown})
		}
	}
	for row := 0; row < c.ModelRows; row++ {
		for col := 0; col < c.ModelColumns; col++ {
			if col >= left && col <= right && row >= top && row <= bottom {
				continue
			}
			cell := board.Cell{Col: col, Row: row}
			if row != skipVerticalRow {
				place(board.Wall{Cell: cell, Type: board.WallRight})
			}
			place(board.Wall{Cell: cell, Type: board.WallDown})
		}
	}
}

// TranslateMoveNotation parses a move written in game-space notation and
// reformats it in model-space notation, translating every cell component.
// Wall components carry no clamping ambiguity; a Classic pawn destination
// that would fall in padding is impossible here since callers only ever
// pass legal game-space notation.
func TranslateMoveNotation(c Config, s string) (string, error) {
	parts, err := splitComponents(s)
	if err != nil {
		return "", err
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		translated, err := translateComponent(p, c.ToModelCell, c.GameRows, c.ModelRows)
		if err != nil {
			return "", err
		}
		out[i] = translated
	}
	return joinComponents(out), nil
}

// TranslateNotationToGame is the inverse of TranslateMoveNotation: it takes
// model-space notation (as produced by the MCTS search over the padded
// board) and rewrites it in game-space notation. Classic-only edge case:
// if a pawn destination component falls outside the game rectangle
// (because its model-space cell is the padding-region corner goal), it
// clamps to the nearest game-rectangle cell on the bottom row.
func TranslateNotationToGame(c Config, s string) (string, error) {
	parts, err := splitComponents(s)
	if err != nil {
		return "", err
	}
	toGame := func(model board.Cell) board.Cell {
		game, ok := c.ToGameCell(model)
		if ok {
			return game
		}
		return c.clampToGameRectangle(model)
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		translated, err := translateComponent(p, toGame, c.ModelRows, c.GameRows)
		if err != nil {
			return "", err
		}
		out[i] = translated
	}
	return joinComponents(out), nil
}

// clampToGameRectangle handles the Classic corner-goal edge case: a model
// cell outside the game rectangle is clamped to the nearest cell on the
// game rectangle's bottom row, since that is the only case the padded
// board's search can produce a pawn destination in padding (the model
// corner goal itself).
func (c Config) clampToGameRectangle(model board.Cell) board.Cell {
	colOffset, _ := c.Offsets()
	col := model.Col - colOffset
	if col < 0 {
		col = 0
	}
	if col >= c.GameColumns {
		col = c.GameColumns - 1
	}
	return board.Cell{Col: col, Row: c.GameRows - 1}
}

func splitComponents(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("padding: empty move notation")
	}
	var parts []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			if i == start {
				return nil, fmt.Errorf("padding: move %q has an empty component", s)
			}
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return parts, nil
}

func joinComponents(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "." + p
	}
	return out
}

func translateComponent(component string, translateCell func(board.Cell) board.Cell, inRows, outRows int) (string, error) {
	if len(component) < 2 {
		return "", fmt.Errorf("padding: component %q too short", component)
	}
	switch component[0] {
	case 'C', 'M':
		cell, err := notation.ParseCell(component[1:], inRows)
		if err != nil {
			return "", err
		}
		translated := translateCell(cell)
		formatted, err := notation.FormatCell(translated, outRows)
		if err != nil {
			return "", err
		}
		return string(component[0]) + formatted, nil
	case '>', '^':
		w, err := notation.ParseWall(component, inRows)
		if err != nil {
			return "", err
		}
		translated := board.Wall{Cell: translateCell(w.Cell), Type: w.Type}
		s, err := notation.FormatWall(translated, outRows)
		if err != nil {
			return "", err
		}
		return s, nil
	default:
		return "", fmt.Errorf("padding: component %q has unknown prefix", component)
	}
}
