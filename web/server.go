// Package web serves the keep-alive page, health and status probes, and
// Prometheus metrics over HTTP.
package web

import (
	"community-bot/bot"
	"community-bot/metrics"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const botName = "Community Bot"

// StatusSource reports the bot's current state.
type StatusSource interface {
	Status(ctx context.Context) (*bot.Status, error)
}

// Pinger checks that storage is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the status HTTP server.
type Server struct {
	http *http.Server
}

// NewRouter builds the routes. m may be nil, in which case /metrics answers 404.
func NewRouter(src StatusSource, db Pinger, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/", handleHome)
	r.Get("/health", handleHealth(db))
	r.Get("/status", handleStatus(src))
	r.Method(http.MethodGet, "/metrics", m.Handler())
	return r
}

// New builds a server on addr.
func New(addr string, src StatusSource, db Pinger, m *metrics.Metrics) *Server {
	return &Server{http: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(src, db, m),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		log.Printf("Status server listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Status server stopped: %v", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func handleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(`<h1>` + botName + `</h1>
<p>Status: <span style="color: green;">Online and running</span></p>
<ul>
  <li>Ticket desk</li>
  <li>Rule database and punishments</li>
  <li>Scheduled maintenance</li>
</ul>
`))
}

func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			log.Printf("Health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"health": "degraded", "message": "database unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"health": "ok", "message": "Bot is running smoothly"})
	}
}

type statusResponse struct {
	State string `json:"status"`
	Bot   string `json:"bot"`
	*bot.Status
}

func handleStatus(src StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := src.Status(r.Context())
		if err != nil {
			log.Printf("Status check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "bot": botName})
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{State: "online", Bot: botName, Status: st})
	}
}
