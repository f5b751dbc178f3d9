// internal/httpserver/server.go
//
// HTTP server wiring for the Snake backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     request logging).
//   - Public endpoints: "/", "/health", "/layouts", "/daily".
//   - Game endpoints: POST /game/new, and the token-gated /game/{id}/* routes
//     including the websocket frame stream.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the token cookie works).
//   - Sessions outlive the request that created them; they run under the
//     server's base context and stop when it is cancelled.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/config"
	"github.com/robalobadob/snake/internal/layouts"
	"github.com/robalobadob/snake/internal/seed"
	"github.com/robalobadob/snake/internal/store"
)

// Server bundles the router, the session store and the layout registry.
type Server struct {
	r        *chi.Mux
	ctx      context.Context
	store    store.Store
	layouts  *layouts.Registry
	cfg      config.Config
	upgrader websocket.Upgrader
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
// Sessions created by the server stop when ctx is cancelled.
func New(ctx context.Context, st store.Store, reg *layouts.Registry, cfg config.Config) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		ctx:     ctx,
		store:   st,
		layouts: reg,
		cfg:     cfg,
		now:     time.Now,
	}
	s.upgrader = websocket.Upgrader{
		HandshakeTimeout: 5 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  2048,
		CheckOrigin:      s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)
	s.r.Use(jsonContentType)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"snake-go","endpoints":["/health","/layouts","/daily","POST /game/new","/game/{id}","/game/{id}/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.store.Len()})
		})
		r.Get("/layouts", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"layouts": s.layouts.Names(), "default": s.cfg.Layout})
		})
		r.Get("/daily", func(w http.ResponseWriter, r *http.Request) {
			now := s.now()
			writeJSON(w, http.StatusOK, map[string]any{
				"date": seed.DateKey(now),
				"seed": seed.Daily(now, s.cfg.DailySalt),
			})
		})

		r.Post("/game/new", s.handleNewGame)
	})

	// Game endpoints: every route needs the token issued by /game/new.
	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireGameToken)

		// The stream hijacks the connection, so it has no handler timeout.
		r.Get("/ws", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(10 * time.Second))
			r.Get("/", s.handleGetGame)
			r.Post("/key", s.handleKey)
			r.Post("/retry", s.handleRetry)
			r.Delete("/", s.handleDeleteGame)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests and http.Server).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkOrigin admits non-browser clients and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.ClientOrigin || origin == "http://"+r.Host || origin == "https://"+r.Host
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", loggedStatus(ww, r)).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// loggedStatus is the status written to the client. A hijacked websocket
// upgrade never records one through the wrapper, so it reports 101.
func loggedStatus(ww chimw.WrapResponseWriter, r *http.Request) int {
	if ww.Status() == 0 && websocket.IsWebSocketUpgrade(r) {
		return http.StatusSwitchingProtocols
	}
	return ww.Status()
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
