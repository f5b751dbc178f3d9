// internal/httpserver/routes_game.go
//
// HTTP routes for a single-player game session.
//   - POST   /game/new        → start a session, returns {gameId, token, seed, layout, snapshot}
//   - GET    /game/{id}       → current snapshot
//   - POST   /game/{id}/key   → {key?, code?} mapped through internal/input
//   - POST   /game/{id}/retry → same as pressing Space after game over; 422 no_spawn
//     when the new round has no room for the snake
//   - DELETE /game/{id}       → stop and forget the session
//
// A session's seed comes from, in order: daily=true (same for everyone on a
// UTC date), an explicit seed phrase, or crypto/rand.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/game"
	"github.com/robalobadob/snake/internal/input"
	"github.com/robalobadob/snake/internal/layouts"
	"github.com/robalobadob/snake/internal/seed"
	"github.com/robalobadob/snake/internal/session"
)

const (
	maxGridSide = 200
	minTickMs   = 20
)

// newGameReq is the body of POST /game/new; every field is optional.
type newGameReq struct {
	Layout string `json:"layout"`
	Seed   string `json:"seed"`
	Daily  bool   `json:"daily"`
	Edges  *bool  `json:"edges"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
	TickMs *int   `json:"tickMs"`
}

type newGameRes struct {
	GameID   string        `json:"gameId"`
	Token    string        `json:"token"`
	Seed     int64         `json:"seed"`
	Layout   string        `json:"layout"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// keyReq carries either a browser key/code name or a key code.
type keyReq struct {
	Key  string   `json:"key"`
	Code *keyCode `json:"code"`
}

// keyCode is a numeric key code (38) or a KeyboardEvent.code name ("KeyW").
type keyCode struct {
	num   int
	name  string
	isNum bool
}

func (c *keyCode) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &c.name); err == nil {
		c.isNum = false
		return nil
	}
	if err := json.Unmarshal(b, &c.num); err != nil {
		return fmt.Errorf("code must be a number or a string: %w", err)
	}
	c.isNum = true
	return nil
}

func (c keyCode) action() input.Action {
	if c.isNum {
		return input.FromKeyCode(c.num)
	}
	return input.FromKey(c.name)
}

// action maps the request through the input adapter. A code wins over a
// key name.
func (k keyReq) action() input.Action {
	if k.Code != nil {
		return k.Code.action()
	}
	return input.FromKey(k.Key)
}

type keyRes struct {
	Handled  bool          `json:"handled"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// gameConfig applies the request overrides to the server defaults.
func (s *Server) gameConfig(req newGameReq) (game.Config, layouts.Layout, error) {
	cfg := s.cfg.Game
	if req.Width != nil {
		cfg.Width = *req.Width
	}
	if req.Height != nil {
		cfg.Height = *req.Height
	}
	if req.Edges != nil {
		cfg.EdgeObstacles = *req.Edges
	}
	if req.TickMs != nil {
		if *req.TickMs < minTickMs {
			return cfg, layouts.Layout{}, fmt.Errorf("%w: tick below %dms", game.ErrInvalidConfig, minTickMs)
		}
		cfg.Tick = time.Duration(*req.TickMs) * time.Millisecond
	}
	if cfg.Width > maxGridSide || cfg.Height > maxGridSide {
		return cfg, layouts.Layout{}, fmt.Errorf("%w: grid larger than %d", game.ErrInvalidConfig, maxGridSide)
	}

	name := req.Layout
	if name == "" {
		name = s.cfg.Layout
	}
	l, err := s.layouts.Get(name)
	if err != nil {
		return cfg, l, err
	}
	cfg.StaticObstacles = l.Within(cfg.Width, cfg.Height)
	return cfg, l, cfg.Validate()
}

func (s *Server) pickSeed(req newGameReq) int64 {
	switch {
	case req.Daily:
		return seed.Daily(s.now(), s.cfg.DailySalt)
	case req.Seed != "":
		return seed.FromPhrase(req.Seed)
	default:
		return seed.Random()
	}
}

// handleNewGame starts a session and hands back its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	cfg, l, err := s.gameConfig(req)
	switch {
	case errors.Is(err, layouts.ErrUnknown):
		writeError(w, http.StatusBadRequest, "unknown_layout")
		return
	case errors.Is(err, game.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, "invalid_config")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.NewString()
	sd := s.pickSeed(req)
	sess, err := session.New(s.ctx, id, cfg, sd)
	if errors.Is(err, game.ErrNoSpawn) {
		writeError(w, http.StatusUnprocessableEntity, "no_spawn")
		return
	} else if err != nil {
		log.Error().Err(err).Str("gameId", id).Msg("new session")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		sess.Close()
		log.Error().Err(err).Str("gameId", id).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	tok, exp, err := s.signToken(id)
	if err != nil {
		_ = s.store.Delete(r.Context(), id)
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setTokenCookie(w, r, tok, exp)

	snap, err := sess.Snapshot()
	if err != nil {
		writeError(w, http.StatusGone, "session_closed")
		return
	}
	writeJSON(w, http.StatusOK, newGameRes{GameID: id, Token: tok, Seed: sd, Layout: l.Name, Snapshot: snap})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	snap, err := sessionFrom(r).Snapshot()
	if err != nil {
		writeError(w, http.StatusGone, "session_closed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleKey feeds one key press to the session. Unknown keys are not an
// error; they are reported as not handled.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.press(w, sessionFrom(r), req.action())
}

// handleRetry is Confirm by another name; it 409s while a round is running.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	handled, err := sess.Press(input.ActionConfirm)
	if err != nil {
		writePressError(w, sess.ID, err)
		return
	}
	if !handled {
		writeError(w, http.StatusConflict, "not_over")
		return
	}
	snap, err := sess.Snapshot()
	if err != nil {
		writeError(w, http.StatusGone, "session_closed")
		return
	}
	writeJSON(w, http.StatusOK, keyRes{Handled: true, Snapshot: snap})
}

func (s *Server) press(w http.ResponseWriter, sess *session.Session, a input.Action) {
	handled, err := sess.Press(a)
	if err != nil {
		writePressError(w, sess.ID, err)
		return
	}
	snap, err := sess.Snapshot()
	if err != nil {
		writeError(w, http.StatusGone, "session_closed")
		return
	}
	writeJSON(w, http.StatusOK, keyRes{Handled: handled, Snapshot: snap})
}

// writePressError maps a failed Session.Press to a status code.
func writePressError(w http.ResponseWriter, gameID string, err error) {
	switch {
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusGone, "session_closed")
	case errors.Is(err, game.ErrNoSpawn):
		writeError(w, http.StatusUnprocessableEntity, "no_spawn")
	default:
		log.Error().Err(err).Str("gameId", gameID).Msg("press")
		writeError(w, http.StatusInternalServerError, "press_failed")
	}
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	s.clearTokenCookie(w, r)
	log.Info().Str("gameId", sess.ID).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}
