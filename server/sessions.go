package server

import (
	"fmt"
	"net/http"
	"time"

	"scrapingai/storage"
)

type createSessionRequest struct {
	UserID string `json:"userId"`
	Title  string `json:"title"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Title == "" {
		req.Title = fmt.Sprintf("New Session %s", time.Now().Format("1/2/2006, 3:04:05 PM"))
	}

	session, err := s.store.CreateSession(r.Context(), req.UserID, req.Title)
	if err != nil {
		s.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}

	sessions, err := s.store.ListSessions(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []storage.Session{}
	}

	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSearchSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	query := r.URL.Query().Get("q")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}

	sessions, err := s.store.ListSessions(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to search sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search sessions")
		return
	}

	results := storage.SearchSessions(sessions, query)
	if results == nil {
		results = []storage.Session{}
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("failed to load session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type renameSessionRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	var req renameSessionRequest
	if err := decodeJSON(r, &req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	id := r.PathValue("id")
	if err := s.store.RenameSession(r.Context(), id, req.Title); err != nil {
		s.logger.Error("failed to rename session", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rename session")
		return
	}

	session, err := s.store.GetSession(r.Context(), id)
	if err != nil || session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.DeleteSession(r.Context(), id); err != nil {
		s.logger.Error("failed to delete session", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	s.forgetOrchestrator(id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.store.ListMessages(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("failed to list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []storage.ChatMessage{}
	}

	// The dashboard can ask for messages pre-rendered as HTML, with
	// file-annotated fences shown as styled cards.
	if r.URL.Query().Get("format") == "html" {
		writeJSON(w, http.StatusOK, renderedMessages(messages))
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

type renderedMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
}

func renderedMessages(messages []storage.ChatMessage) []renderedMessage {
	rendered := make([]renderedMessage, 0, len(messages))
	for _, msg := range messages {
		rendered = append(rendered, renderedMessage{
			ID:        msg.ID,
			Role:      msg.Role,
			HTML:      renderMessageHTML(msg.Content),
			CreatedAt: msg.CreatedAt,
		})
	}
	return rendered
}
