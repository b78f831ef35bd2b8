package session

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"wallwars/internal/board"
	"wallwars/internal/evaluator"
	"wallwars/internal/mcts"
	"wallwars/internal/notation"
	"wallwars/internal/padding"
)

// rootDirichletAlpha/Epsilon are the self-play-style exploration defaults
// applied to every session's root (AlphaZero's published values for small
// board games). Each session is seeded per-bgsId (see generateSeed), and
// wiring that seed into root Dirichlet noise is the only randomness
// internal/mcts exposes, so that's what the seed drives here.
const (
	rootDirichletAlpha   = 0.3
	rootDirichletEpsilon = 0.25
)

// Session bundles one ongoing game's MCTS, its ply counter, and the
// padding configuration needed to translate notation between game and
// model space, behind a mutex. Callers are expected to keep at most one
// in-flight request per bgsId; this mutex is what actually enforces that
// against concurrent callers.
type Session struct {
	mu             sync.Mutex
	tree           *mcts.Tree
	ply            int
	padCfg         padding.Config
	samplesPerMove int
}

func newSession(eval evaluator.Evaluator, cfg GameConfig, mgr ManagerConfig, seed uint32) (*Session, error) {
	b, pc, err := buildBoard(cfg, mgr)
	if err != nil {
		return nil, err
	}
	turn := board.Turn{Player: board.Red, Action: board.First}
	rng := rand.New(rand.NewSource(int64(seed)))
	tree := mcts.New(eval, b, turn,
		mcts.WithMaxParallelism(mgr.MaxParallelSamples),
		mcts.WithDirichletNoise(rootDirichletAlpha, rootDirichletEpsilon, rng),
	)
	return &Session{
		tree:           tree,
		padCfg:         pc,
		samplesPerMove: mgr.SamplesPerMove,
	}, nil
}

// generateSeed combines an externally-supplied bgsId with the manager's
// base seed, matching SessionManager::generate_seed's fnv32(bgs_id) XOR
// base_seed.
func generateSeed(bgsID string, baseSeed uint32) uint32 {
	h := fnv.New32a()
	h.Write([]byte(bgsID))
	return h.Sum32() ^ baseSeed
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// currentPlayer derives whose turn it is from a ply count: Red moves on
// even plies, Blue on odd ones.
func currentPlayer(ply int) board.Player {
	if ply%2 == 1 {
		return board.Blue
	}
	return board.Red
}

// Manager owns every live session, keyed by the caller-supplied bgsId,
// behind a reader/writer lock: reads (get/evaluate/apply, which only read
// the map itself before taking a session's own mutex) are common, map
// mutations (start/end) are rare. Grounded on internal/server/game.Manager's
// locking shape, generalized from a server-minted uuid key to an externally
// supplied bgsId with a hard cap on concurrently live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      ManagerConfig
	eval     evaluator.Evaluator
}

// NewManager builds a Manager that evaluates every session with eval,
// under the given engine-wide configuration.
func NewManager(eval evaluator.Evaluator, cfg ManagerConfig) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		eval:     eval,
	}
}

// ActiveSessionCount reports how many sessions are currently live.
func (m *Manager) ActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// HasSession reports whether bgsID names a live session.
func (m *Manager) HasSession(bgsID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[bgsID]
	return ok
}

func (m *Manager) getSession(bgsID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[bgsID]
	return s, ok
}

// StartResponse is the wire response to a start_game_session request.
type StartResponse struct {
	Type    string `json:"type"`
	BgsID   string `json:"bgsId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// StartGameSession validates cfg, builds the session's board, and inserts
// it under bgsID. Rejects a duplicate bgsID or a full session table before
// doing any of the (comparatively expensive) board construction.
func (m *Manager) StartGameSession(bgsID string, cfg GameConfig) StartResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[bgsID]; exists {
		return StartResponse{Type: "game_session_started", BgsID: bgsID, Success: false,
			Error: fmt.Sprintf("session %q already exists", bgsID)}
	}
	if len(m.sessions) >= m.cfg.MaxSessions {
		return StartResponse{Type: "game_session_started", BgsID: bgsID, Success: false,
			Error: fmt.Sprintf("session cap of %d reached", m.cfg.MaxSessions)}
	}

	seed := generateSeed(bgsID, m.cfg.BaseSeed)
	sess, err := newSession(m.eval, cfg, m.cfg, seed)
	if err != nil {
		return StartResponse{Type: "game_session_started", BgsID: bgsID, Success: false, Error: err.Error()}
	}

	m.sessions[bgsID] = sess
	log.Debug().Str("bgsId", bgsID).Uint32("seed", seed).Msg("session started")
	return StartResponse{Type: "game_session_started", BgsID: bgsID, Success: true}
}

// EndResponse is the wire response to an end_game_session request.
type EndResponse struct {
	Type    string `json:"type"`
	BgsID   string `json:"bgsId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// EndGameSession erases a session. Safe to call even if a request is
// in-flight against it on another goroutine; the session itself becomes
// unreachable from new requests immediately, and the in-flight request
// completes against its own already-acquired reference.
func (m *Manager) EndGameSession(bgsID string) EndResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[bgsID]; !ok {
		return EndResponse{Type: "game_session_ended", BgsID: bgsID, Success: false,
			Error: fmt.Sprintf("session %q not found", bgsID)}
	}
	delete(m.sessions, bgsID)
	return EndResponse{Type: "game_session_ended", BgsID: bgsID, Success: true}
}

// EvaluateResponse is the wire response to an evaluate_position request.
type EvaluateResponse struct {
	Type       string  `json:"type"`
	BgsID      string  `json:"bgsId"`
	Ply        int     `json:"ply"`
	BestMove   string  `json:"bestMove,omitempty"`
	Evaluation float64 `json:"evaluation,omitempty"`
	Success    bool    `json:"success"`
	Error      string  `json:"error,omitempty"`
}

// EvaluatePosition runs samplesPerMove more MCTS samples against the
// session's current position, then reports its best move (in game-space
// notation) and its evaluation from Player 1 (Red)'s perspective.
//
// The response's ply field always reports the session's actual ply, even
// on a mismatch — a caller that got out of sync needs to know what ply the
// session thinks it's on to resynchronize.
func (m *Manager) EvaluatePosition(ctx context.Context, bgsID string, expectedPly int) EvaluateResponse {
	sess, ok := m.getSession(bgsID)
	if !ok {
		return EvaluateResponse{Type: "evaluate_response", BgsID: bgsID, Success: false,
			Error: fmt.Sprintf("session %q not found", bgsID)}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.ply != expectedPly {
		return EvaluateResponse{Type: "evaluate_response", BgsID: bgsID, Ply: sess.ply, Success: false,
			Error: fmt.Sprintf("Ply mismatch: expected %d, got %d", sess.ply, expectedPly)}
	}

	if err := sess.tree.Sample(ctx, sess.samplesPerMove); err != nil {
		return EvaluateResponse{Type: "evaluate_response", BgsID: bgsID, Ply: sess.ply, Success: false, Error: err.Error()}
	}

	// Capture root_value before peeking the best move: peeking never
	// mutates the tree, but reading the value strictly after pins down
	// which expansion state the reported evaluation corresponds to.
	value := sess.tree.RootValue()

	move, ok := sess.tree.PeekBestMove()
	if !ok {
		return EvaluateResponse{Type: "evaluate_response", BgsID: bgsID, Ply: sess.ply, Success: false,
			Error: "No legal move available"}
	}

	player := currentPlayer(sess.ply)
	rootBoard, _ := sess.tree.RootPosition()

	modelNotation, err := notation.FormatMove(rootBoard, player, move, sess.padCfg.ModelRows)
	if err != nil {
		return EvaluateResponse{Type: "evaluate_response", BgsID: bgsID, Ply: sess.ply, Success: false, Error: err.Error()}
	}
	gameNotation, err := padding.TranslateNotationToGame(sess.padCfg, modelNotation)
	if err != nil {
		return EvaluateResponse{Type: "evaluate_response", BgsID: bgsID, Ply: sess.ply, Success: false, Error: err.Error()}
	}

	if player == board.Blue {
		value = -value
	}
	value = clamp(value, -1, 1)

	log.Debug().Str("bgsId", bgsID).Int("ply", sess.ply).Str("bestMove", gameNotation).
		Float64("evaluation", value).Msg("evaluated position")

	return EvaluateResponse{Type: "evaluate_response", BgsID: bgsID, Ply: sess.ply,
		BestMove: gameNotation, Evaluation: value, Success: true}
}

// MoveResponse is the wire response to an apply_move request.
type MoveResponse struct {
	Type    string `json:"type"`
	BgsID   string `json:"bgsId"`
	Ply     int    `json:"ply"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ApplyMove parses moveNotation (game-space) and advances the session's
// tree past it, incrementing ply only on success.
func (m *Manager) ApplyMove(bgsID string, expectedPly int, moveNotation string) MoveResponse {
	sess, ok := m.getSession(bgsID)
	if !ok {
		return MoveResponse{Type: "move_applied", BgsID: bgsID, Success: false,
			Error: fmt.Sprintf("session %q not found", bgsID)}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.ply != expectedPly {
		return MoveResponse{Type: "move_applied", BgsID: bgsID, Ply: sess.ply, Success: false,
			Error: fmt.Sprintf("Ply mismatch: expected %d, got %d", sess.ply, expectedPly)}
	}

	player := currentPlayer(sess.ply)

	modelNotation, err := padding.TranslateMoveNotation(sess.padCfg, moveNotation)
	if err != nil {
		return MoveResponse{Type: "move_applied", BgsID: bgsID, Ply: sess.ply, Success: false,
			Error: fmt.Sprintf("Failed to apply move: %v", err)}
	}

	rootBoard, _ := sess.tree.RootPosition()
	move, err := notation.ParseMove(rootBoard, player, sess.padCfg.ModelRows, modelNotation)
	if err != nil {
		return MoveResponse{Type: "move_applied", BgsID: bgsID, Ply: sess.ply, Success: false,
			Error: fmt.Sprintf("Failed to apply move: %v", err)}
	}

	if err := sess.tree.ForceMove(move); err != nil {
		return MoveResponse{Type: "move_applied", BgsID: bgsID, Ply: sess.ply, Success: false,
			Error: fmt.Sprintf("Failed to apply move: %v", err)}
	}

	sess.ply++
	log.Debug().Str("bgsId", bgsID).Int("ply", sess.ply).Msg("applied move")

	return MoveResponse{Type: "move_applied", BgsID: bgsID, Ply: sess.ply, Success: true}
}
