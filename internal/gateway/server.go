// Package gateway exposes the conversation loop over HTTP: the chat
// endpoint, a health probe, and Prometheus metrics.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/haasonsaas/medassist/internal/agent"
	"github.com/haasonsaas/medassist/internal/providers"
	"github.com/haasonsaas/medassist/pkg/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Replier generates the assistant reply for one user message.
type Replier interface {
	Reply(ctx context.Context, userMessage string, history []models.Turn, conversationID string) (string, error)
}

// Config holds the server's listen address, CORS origins, and the model name
// reported by the health endpoint.
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
	ModelName      string
}

// Server serves the chat API.
type Server struct {
	cfg     Config
	replier Replier
	logger  *slog.Logger
	metrics *Metrics
}

// NewServer wires the replier behind the HTTP surface. A nil metrics
// disables counting; a nil logger uses slog.Default.
func NewServer(cfg Config, replier Replier, logger *slog.Logger, metrics *Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		replier: replier,
		logger:  logger,
		metrics: metrics,
	}
}

// Handler builds the route table with logging and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = CORSMiddleware(s.cfg.AllowedOrigins)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	return handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.count("bad_request")
		writeDetail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.UserMessage == "" {
		s.count("bad_request")
		writeDetail(w, http.StatusBadRequest, "Message must not be empty.")
		return
	}

	reply, err := s.replier.Reply(r.Context(), req.UserMessage, req.History, req.ConversationID)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMessage) {
			s.count("bad_request")
			writeDetail(w, http.StatusBadRequest, "Message must not be empty.")
			return
		}
		if providers.IsUnavailable(err) {
			s.logger.Warn("model unavailable", "error", err)
			s.count("unavailable")
			writeDetail(w, http.StatusServiceUnavailable, fmt.Sprintf("Model backend unavailable: %v", err))
			return
		}
		s.logger.Error("chat request failed", "error", err)
		s.count("error")
		writeDetail(w, http.StatusInternalServerError, "Failed to generate reply.")
		return
	}

	s.count("ok")
	if s.metrics != nil {
		s.metrics.ChatRequestDuration.Observe(time.Since(start).Seconds())
	}
	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  s.cfg.ModelName,
	})
}

func (s *Server) count(status string) {
	if s.metrics != nil {
		s.metrics.ChatRequestCounter.WithLabelValues(status).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
