// Package server exposes the chat pipeline and the session/file CRUD
// surface over HTTP. Streaming responses go out as Server-Sent Events.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"scrapingai/chat"
	"scrapingai/config"
	"scrapingai/model"
	"scrapingai/storage"
)

// apiKeyRequiredMsg is the exact body text the web client shows when a chat
// request arrives without a usable credential.
const apiKeyRequiredMsg = "API key is required. Please add your API key in the chat interface."

// generationFailedMsg is the body text for provider failures.
const generationFailedMsg = "Failed to generate response"

// Config wires the server's dependencies. Store and Resolver are required;
// Fallback is the optional server-side credential file.
type Config struct {
	Logger   *slog.Logger
	Store    *storage.Store
	Resolver chat.Resolver
	Fallback *config.CredentialStore
}

// Server is the HTTP boundary. It keeps one orchestrator per active
// session, created on first use and seeded from persisted messages.
type Server struct {
	logger   *slog.Logger
	store    *storage.Store
	resolver chat.Resolver
	fallback *config.CredentialStore
	mux      *http.ServeMux

	mu            sync.Mutex
	orchestrators map[string]*chat.Orchestrator
}

// New creates the server and registers its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		logger:        logger,
		store:         cfg.Store,
		resolver:      cfg.Resolver,
		fallback:      cfg.Fallback,
		mux:           http.NewServeMux(),
		orchestrators: make(map[string]*chat.Orchestrator),
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/chat", s.handleChat)

	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /api/sessions/search", s.handleSearchSessions)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("PATCH /api/sessions/{id}", s.handleRenameSession)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("GET /api/sessions/{id}/messages", s.handleListMessages)
	s.mux.HandleFunc("GET /api/sessions/{id}/files", s.handleListFiles)
	s.mux.HandleFunc("POST /api/sessions/{id}/files/materialize", s.handleMaterialize)

	s.mux.HandleFunc("GET /api/files/{id}", s.handleGetFile)
	s.mux.HandleFunc("PUT /api/files/{id}", s.handleUpdateFile)

	s.mux.HandleFunc("GET /api/users/{id}/keys/{service}", s.handleGetAPIKey)
	s.mux.HandleFunc("PUT /api/users/{id}/keys/{service}", s.handleSetAPIKey)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// orchestrator returns the session's orchestrator, creating and seeding it
// from persisted messages on first use.
func (s *Server) orchestrator(ctx context.Context, sessionID, userID string) (*chat.Orchestrator, error) {
	s.mu.Lock()
	if o, ok := s.orchestrators[sessionID]; ok {
		s.mu.Unlock()
		return o, nil
	}
	s.mu.Unlock()

	// Seed outside the lock; message loads can be slow.
	history, err := s.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orchestrators[sessionID]; ok {
		return o, nil
	}

	o := chat.NewOrchestrator(sessionID, userID, s.resolver, s.keyChain(), s.materializer(), s.logger, history)
	s.orchestrators[sessionID] = o
	return o, nil
}

func (s *Server) history(ctx context.Context, sessionID string) ([]model.Message, error) {
	stored, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]model.Message, 0, len(stored))
	for _, msg := range stored {
		history = append(history, model.Message{Role: model.Role(msg.Role), Content: msg.Content})
	}
	return history, nil
}

func (s *Server) materializer() *chat.Materializer {
	return chat.NewMaterializer(s.store, s.logger)
}

// forgetOrchestrator drops a session's orchestrator, e.g. after deletion.
func (s *Server) forgetOrchestrator(sessionID string) {
	s.mu.Lock()
	delete(s.orchestrators, sessionID)
	s.mu.Unlock()
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
