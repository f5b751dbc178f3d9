// internal/httpserver/ws.go
//
// GET /game/{id}/ws streams a session to the browser.
//
// Server → client messages:
//   {"type":"snapshot","snapshot":{...}}   once, on connect
//   {"type":"frame","frame":{...}}         after every tick or key press
// Client → server messages:
//   {"key":"ArrowUp"}, {"code":38} or {"code":"KeyW"}   a key press
//
// Messages that do not decode are skipped; the stream stays open.
// One goroutine reads key presses; the handler goroutine is the only writer.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/game"
	"github.com/robalobadob/snake/internal/session"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 512
)

type wsMessage struct {
	Type     string         `json:"type"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Frame    *session.Frame `json:"frame,omitempty"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Debug().Err(err).Str("gameId", sess.ID).Msg("ws upgrade")
		return
	}
	defer conn.Close()

	snap, frames, cancel, err := sess.Subscribe()
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
			time.Now().Add(wsWriteWait))
		return
	}
	defer cancel()

	log.Debug().Str("gameId", sess.ID).Msg("ws connected")

	readDone := make(chan struct{})
	go s.readKeys(conn, sess, readDone)

	if err := writeMessage(conn, wsMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case f, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := writeMessage(conn, wsMessage{Type: "frame", Frame: &f}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-readDone:
			return
		}
	}
}

// readKeys forwards key presses until the connection fails.
func (s *Server) readKeys(conn *websocket.Conn, sess *session.Session, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("gameId", sess.ID).Msg("ws read")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var req keyReq
		if err := json.Unmarshal(data, &req); err != nil {
			log.Debug().Err(err).Str("gameId", sess.ID).Msg("ws bad key message")
			continue
		}
		if _, err := sess.Press(req.action()); errors.Is(err, session.ErrClosed) {
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, m wsMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(m)
}
