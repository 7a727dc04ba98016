package server

import (
	"net/http"

	"scrapingai/chat"
	"scrapingai/extract"
	"scrapingai/storage"
)

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.store.ListFiles(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("failed to list files", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list files")
		return
	}
	if files == nil {
		files = []storage.ProjectFile{}
	}

	writeJSON(w, http.StatusOK, files)
}

// materializeRequest carries the assistant text to extract files from.
// When Content is empty, the session orchestrator's pending files from the
// last completed turn are used instead.
type materializeRequest struct {
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

// materializeResponse reports per-path outcomes. Errors are flattened to
// strings for the wire.
type materializeResponse struct {
	Saved  []storage.ProjectFile `json:"saved"`
	Failed []failedFilePayload   `json:"failed,omitempty"`
}

type failedFilePayload struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req materializeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("failed to load session", "session", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save files")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var result chat.MaterializeResult
	if req.Content != "" {
		files := extract.Files(req.Content)
		result = s.materializer().Materialize(r.Context(), sessionID, files)
	} else {
		o, err := s.orchestrator(r.Context(), sessionID, req.UserID)
		if err != nil {
			s.logger.Error("orchestrator setup failed", "session", sessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save files")
			return
		}
		result = o.MaterializePending(r.Context())
	}

	writeJSON(w, http.StatusOK, materializePayload(result))
}

func materializePayload(result chat.MaterializeResult) materializeResponse {
	resp := materializeResponse{Saved: result.Saved}
	if resp.Saved == nil {
		resp.Saved = []storage.ProjectFile{}
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, failedFilePayload{Path: f.Path, Error: f.Err.Error()})
	}
	return resp
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.store.GetFile(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("failed to load file", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load file")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	writeJSON(w, http.StatusOK, file)
}

type updateFileRequest struct {
	Content string `json:"content"`
}

// handleUpdateFile backs the dashboard's file editor: content replacement
// is total, never a merge.
func (s *Server) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	var req updateFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	existing, err := s.store.GetFile(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load file", "file", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update file")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	file, err := s.store.UpdateFile(r.Context(), id, req.Content)
	if err != nil {
		s.logger.Error("failed to update file", "file", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update file")
		return
	}

	writeJSON(w, http.StatusOK, file)
}
