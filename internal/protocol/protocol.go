// Package protocol implements the line-framed stdio request/response loop
// that drives internal/session: each line read is one JSON request object,
// each line written is one JSON response object, responses may be written
// out of request order, and a malformed line is dropped without affecting
// any other in-flight request.
package protocol

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"wallwars/internal/session"
)

// Request is the wire shape of one incoming line, a superset of every
// request kind's fields; unused fields for a given type are simply absent
// from the JSON and left zero-valued.
type Request struct {
	Type        string             `json:"type"`
	BgsID       string             `json:"bgsId"`
	BotID       string             `json:"botId,omitempty"`
	Config      session.GameConfig `json:"config,omitempty"`
	ExpectedPly int                `json:"expectedPly"`
	Move        string             `json:"move,omitempty"`
}

// ErrorResponse is returned for a request whose type is not recognized.
type ErrorResponse struct {
	Type  string `json:"type"`
	BgsID string `json:"bgsId"`
	Error string `json:"error"`
}

// Handle routes one decoded request to mgr and returns the value to
// marshal as the response line. Unrecognized types produce an
// {type:"error", ...} response rather than an error return, so every
// request line always gets exactly one response line.
func Handle(ctx context.Context, mgr *session.Manager, req Request) any {
	switch req.Type {
	case "start_game_session":
		return mgr.StartGameSession(req.BgsID, req.Config)
	case "end_game_session":
		return mgr.EndGameSession(req.BgsID)
	case "evaluate_position":
		return mgr.EvaluatePosition(ctx, req.BgsID, req.ExpectedPly)
	case "apply_move":
		return mgr.ApplyMove(req.BgsID, req.ExpectedPly, req.Move)
	default:
		return ErrorResponse{Type: "error", BgsID: req.BgsID,
			Error: fmt.Sprintf("Unknown request type: %s", req.Type)}
	}
}

// Serve reads line-framed JSON requests from r and writes line-framed JSON
// responses to w until r reaches EOF. Each request is dispatched to its
// own goroutine, so one session's slow evaluate_position never blocks
// another session's requests; writes to w are serialized by a single
// mutex, since stdout itself has no per-call atomicity guarantee of its
// own. Serve returns (and its caller exits 0) on clean EOF, or the
// scanner's error otherwise.
func Serve(ctx context.Context, r io.Reader, w io.Writer, mgr *session.Manager) error {
	var writeMu sync.Mutex
	var wg sync.WaitGroup

	writeLine := func(v any) {
		data, err := json.Marshal(v)
		if err != nil {
			log.Error().Err(err).Msg("protocol: failed to marshal response")
			return
		}
		data = append(data, '\n')
		writeMu.Lock()
		defer writeMu.Unlock()
		if _, err := w.Write(data); err != nil {
			log.Error().Err(err).Msg("protocol: failed to write response")
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			log.Warn().Err(err).Msg("protocol: dropping malformed request line")
			continue
		}

		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			writeLine(Handle(ctx, mgr, req))
		}(req)
	}

	wg.Wait()
	return scanner.Err()
}
