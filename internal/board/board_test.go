package board

import "testing"

func TestDefaultStartingPositions(t *testing.T) {
	b := NewBoard(5, 5, Classic)
	if got, want := b.CatPosition(Red), (Cell{Col: 0, Row: 0}); got != want {
		t.Fatalf("red cat = %v, want %v", got, want)
	}
	if got, want := b.CatPosition(Blue), (Cell{Col: 4, Row: 0}); got != want {
		t.Fatalf("blue cat = %v, want %v", got, want)
	}
	if got, want := b.Goal(Red), (Cell{Col: 4, Row: 4}); got != want {
		t.Fatalf("red goal = %v, want %v", got, want)
	}
	if got, want := b.Goal(Blue), (Cell{Col: 0, Row: 4}); got != want {
		t.Fatalf("blue goal = %v, want %v", got, want)
	}
}

func TestBoundaryWallsAlwaysBlocked(t *testing.T) {
	b := NewBoard(4, 4, Standard)
	if !b.IsBlocked(Wall{Cell: Cell{Col: 3, Row: 0}, Type: WallRight}) {
		t.Fatal("right edge of board must be blocked")
	}
	if !b.IsBlocked(Wall{Cell: Cell{Col: 0, Row: 3}, Type: WallDown}) {
		t.Fatal("bottom edge of board must be blocked")
	}
}

func TestClassicMouseHasNoLegalDirections(t *testing.T) {
	b := NewBoard(5, 5, Classic)
	if dirs := b.LegalDirections(Red, Mouse); dirs != nil {
		t.Fatalf("classic mouse should have no legal directions, got %v", dirs)
	}
}

func TestStandardMouseCanMove(t *testing.T) {
	b := NewBoard(5, 5, Standard)
	dirs := b.LegalDirections(Red, Mouse)
	if len(dirs) == 0 {
		t.Fatal("standard mouse should have legal directions on an empty board")
	}
}

func TestLegalWallsExcludesBridges(t *testing.T) {
	// Build a narrow 4x4 corridor where a single wall would be a bridge:
	// a wall closing off the only remaining column on Red's path
	// disconnects Red's cat from its goal.
	b := NewBoardWithPositions(4, 4, Classic,
		Cell{Col: 0, Row: 0}, Cell{Col: 0, Row: 3},
		Cell{Col: 3, Row: 0}, Cell{Col: 3, Row: 3},
	)

	// Wall off column 0's right side on every row but the bottom one, so
	// Red's only route runs straight down column 0 and every Down wall in
	// column 0 becomes a bridge.
	for row := 0; row < 3; row++ {
		b.PlaceWall(Red, Wall{Cell: Cell{Col: 0, Row: row}, Type: WallRight})
	}

	legal := b.LegalWalls()
	// Placing a Down wall anywhere in column 0 would cut Red's only path
	// to its goal straight down column 0; it must be excluded.
	candidate := Wall{Cell: Cell{Col: 0, Row: 1}, Type: WallDown}
	for _, w := range legal {
		if w == candidate {
			t.Fatalf("wall %v disconnects red from its goal but was reported legal", candidate)
		}
	}
}

func TestWinnerCloseRaceDraw(t *testing.T) {
	// Red cat lands on Blue's mouse, but Blue's cat is within distance 2 of
	// its own goal (Red's mouse) at that instant -> draw, not a Red win.
	b := NewBoardWithPositions(5, 5, Classic,
		Cell{Col: 3, Row: 4}, Cell{Col: 2, Row: 2}, // red cat, red mouse
		Cell{Col: 2, Row: 3}, Cell{Col: 4, Row: 4}, // blue cat (adjacent to red mouse), blue mouse
	)
	b.TakeStep(Red, Cat, Right) // red cat (3,4) -> (4,4) == blue mouse
	if w := b.Winner(); w != Draw {
		t.Fatalf("winner = %v, want Draw (close-race rule)", w)
	}
}

func TestWinnerRedWinsWithoutCloseRace(t *testing.T) {
	b := NewBoardWithPositions(5, 5, Classic,
		Cell{Col: 3, Row: 4}, Cell{Col: 0, Row: 4}, // red cat next to blue mouse, red mouse
		Cell{Col: 0, Row: 0}, Cell{Col: 4, Row: 4}, // blue cat far from its goal, blue mouse
	)
	b.TakeStep(Red, Cat, Right)
	if w := b.Winner(); w != WinnerRed {
		t.Fatalf("winner = %v, want Red", w)
	}
}

func TestScoreForTerminalPositions(t *testing.T) {
	b := NewBoardWithPositions(5, 5, Classic,
		Cell{Col: 3, Row: 4}, Cell{Col: 0, Row: 4},
		Cell{Col: 0, Row: 0}, Cell{Col: 4, Row: 4},
	)
	b.TakeStep(Red, Cat, Right)
	if got := b.ScoreFor(Red); got != 1.0 {
		t.Fatalf("ScoreFor(Red) = %v, want 1.0", got)
	}
	if got := b.ScoreFor(Blue); got != -1.0 {
		t.Fatalf("ScoreFor(Blue) = %v, want -1.0", got)
	}
}

func TestDistanceUnreachableIsMinusOne(t *testing.T) {
	b := NewBoard(4, 4, Classic)
	// Wall the starting cell in completely.
	b.PlaceWall(Red, Wall{Cell: Cell{Col: 0, Row: 0}, Type: WallRight})
	b.PlaceWall(Red, Wall{Cell: Cell{Col: 0, Row: 0}, Type: WallDown})
	if got := b.Distance(Cell{Col: 0, Row: 0}, Cell{Col: 3, Row: 3}); got != -1 {
		t.Fatalf("distance = %d, want -1 (unreachable)", got)
	}
}

func TestWallOwnerReportsPlacingPlayer(t *testing.T) {
	b := NewBoard(5, 5, Classic)
	w := Wall{Cell: Cell{Col: 1, Row: 1}, Type: WallRight}
	if _, ok := b.WallOwner(w); ok {
		t.Fatal("expected no owner before the wall is placed")
	}
	b.PlaceWall(Blue, w)
	owner, ok := b.WallOwner(w)
	if !ok || owner != Blue {
		t.Fatalf("WallOwner() = (%v, %v), want (Blue, true)", owner, ok)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBoard(5, 5, Classic)
	clone := b.Clone()
	clone.TakeStep(Red, Cat, Right)
	if b.CatPosition(Red) == clone.CatPosition(Red) {
		t.Fatal("mutating clone must not affect original")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	b1 := NewBoard(5, 5, Classic)
	b2 := NewBoard(5, 5, Classic)
	turn := Turn{Player: Red, Action: First}
	if b1.Fingerprint(turn, nil) != b2.Fingerprint(turn, nil) {
		t.Fatal("identical boards must fingerprint identically")
	}
	b2.TakeStep(Red, Cat, Right)
	if b1.Fingerprint(turn, nil) == b2.Fingerprint(turn, nil) {
		t.Fatal("different boards must not collide trivially")
	}
}
