// Package gateway exposes agora over HTTP: a credential-hiding proxy to the
// configured providers, config introspection, server-side rounds, and a
// websocket feed of live arena events.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/agorabot/agora/internal/bus"
	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/runner"
	"github.com/agorabot/agora/internal/schema"
	"github.com/agorabot/agora/internal/transport"
)

// RoundRunner runs a debate server-side. Satisfied by *runner.Runner.
type RoundRunner interface {
	Run(ctx context.Context, opts runner.Options) (*runner.Outcome, error)
}

// Server is the gateway HTTP handler set.
type Server struct {
	cfg *config.Config
	bus *bus.Bus
	run RoundRunner
}

// NewServer creates a gateway over cfg. run may be nil, which disables
// POST /api/rounds.
func NewServer(cfg *config.Config, b *bus.Bus, run RoundRunner) *Server {
	return &Server{cfg: cfg, bus: b, run: run}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/providers", s.handleProviders)
	mux.HandleFunc("GET /api/rosters", s.handleRosters)
	mux.HandleFunc("POST /api/rounds", s.handleRounds)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// chatRequest is the proxy body: the provider key plus the completion
// payload to forward verbatim.
type chatRequest struct {
	Provider string             `json:"provider"`
	Payload  schema.ChatRequest `json:"payload"`
}

// handleChat resolves the provider's credentials server-side and forwards
// the payload to its completions endpoint. Status, content type and cache
// headers pass through; SSE bodies are flushed chunk by chunk.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	key, prov, ok := s.cfg.Provider(req.Provider)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no providers configured"))
		return
	}

	resp, err := transport.Direct(prov)(r.Context(), req.Payload)
	if err != nil {
		slog.Warn("proxy request failed", "provider", key, "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	defer resp.Body.Close()

	for _, h := range []string{"Content-Type", "Cache-Control"} {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF {
				slog.Warn("proxy stream interrupted", "provider", key, "err", err)
			}
			return
		}
	}
}

// providerInfo is a provider with credentials redacted.
type providerInfo struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	BaseURL string   `json:"baseUrl"`
	Models  []string `json:"models"`
	HasKey  bool     `json:"hasKey"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	out := make([]providerInfo, 0, len(s.cfg.Providers))
	for key, p := range s.cfg.Providers {
		out = append(out, providerInfo{
			Key:     key,
			Name:    p.Name,
			BaseURL: p.BaseURL,
			Models:  p.Models,
			HasKey:  p.APIKey != "",
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// rosterInfo pairs a roster with its config key.
type rosterInfo struct {
	Key    string                `json:"key"`
	Name   string                `json:"name"`
	Agents []schema.AgentProfile `json:"agents"`
}

func (s *Server) handleRosters(w http.ResponseWriter, r *http.Request) {
	out := make([]rosterInfo, 0, len(s.cfg.Rosters))
	for key, ros := range s.cfg.Rosters {
		out = append(out, rosterInfo{Key: key, Name: ros.Name, Agents: ros.Agents})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRounds runs a full debate and returns the outcome. Events stream to
// websocket subscribers while the rounds run.
func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	if s.run == nil {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("round runner not configured"))
		return
	}
	var opts runner.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	started := time.Now()
	out, err := s.run.Run(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	slog.Info("round request served",
		"roster", out.Roster, "messages", len(out.Log), "took", time.Since(started))
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
