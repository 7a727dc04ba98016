package server

import (
	"context"
	"errors"
	"net/http"

	"scrapingai/chat"
	"scrapingai/extract"
	"scrapingai/model"
)

// chatRequest is the inbound chat payload. SessionID and UserID are
// optional: without a session the request is served statelessly from the
// transcript it carries, exactly like the hosted chat route.
type chatRequest struct {
	Messages  []model.Message `json:"messages"`
	Model     string          `json:"model"`
	APIKey    string          `json:"apiKey"`
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
}

// handleChat streams an assistant reply as SSE. The error contract mirrors
// the web client's expectations: a missing credential is a 400 with a
// specific message and must never reach a provider; any provider failure
// before the first byte is a 500 with a generic message.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidateTranscript(req.Messages); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Messages) == 0 || req.Messages[len(req.Messages)-1].Role != model.RoleUser {
		writeError(w, http.StatusBadRequest, "last message must be from the user")
		return
	}
	input := req.Messages[len(req.Messages)-1].Content

	o, err := s.chatOrchestrator(r.Context(), req)
	if err != nil {
		s.logger.Error("orchestrator setup failed", "session", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, generationFailedMsg)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, generationFailedMsg)
		return
	}

	reply, err := o.Send(r.Context(), req.Model, req.APIKey, input, func(chunk string) error {
		return sse.WriteEvent("chunk", map[string]string{"text": chunk})
	})
	if err != nil {
		s.writeChatError(w, sse, req.Model, err)
		return
	}

	if req.SessionID != "" {
		s.persistTurn(r.Context(), req.SessionID, input, reply)
	}

	files := extract.Files(reply)
	done := map[string]any{"text": reply}
	if len(files) > 0 {
		done["files"] = extractedFilesPayload(files)
	}
	if err := sse.WriteEvent("done", done); err != nil {
		s.logger.Warn("failed to finish stream", "error", err)
	}
}

// chatOrchestrator picks the orchestrator for a request: the session's
// long-lived one when a session is named, otherwise a throwaway seeded from
// the request transcript.
func (s *Server) chatOrchestrator(ctx context.Context, req chatRequest) (*chat.Orchestrator, error) {
	if req.SessionID != "" {
		return s.orchestrator(ctx, req.SessionID, req.UserID)
	}

	history := req.Messages[:len(req.Messages)-1]
	return chat.NewOrchestrator("", req.UserID, s.resolver, s.keyChain(), s.materializer(), s.logger, history), nil
}

// writeChatError maps a chat failure onto the wire. Once streaming has
// begun the status line is gone, so late failures become an SSE error
// event instead.
func (s *Server) writeChatError(w http.ResponseWriter, sse *sseWriter, modelID string, err error) {
	switch {
	case errors.Is(err, model.ErrMissingAPIKey):
		writeError(w, http.StatusBadRequest, apiKeyRequiredMsg)
	case errors.Is(err, chat.ErrStreamInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case sse.Started():
		s.logger.Error("stream aborted", "model", modelID, "error", err)
		_ = sse.WriteEvent("error", map[string]string{"error": generationFailedMsg})
	default:
		s.logger.Error("chat request failed", "model", modelID, "error", err)
		writeError(w, http.StatusInternalServerError, generationFailedMsg)
	}
}

// persistTurn appends the completed turn to the session. Persistence
// failures are logged but do not fail a stream the client already received.
func (s *Server) persistTurn(ctx context.Context, sessionID, input, reply string) {
	if _, err := s.store.AppendMessage(ctx, sessionID, string(model.RoleUser), input); err != nil {
		s.logger.Warn("failed to persist user message", "session", sessionID, "error", err)
		return
	}
	if _, err := s.store.AppendMessage(ctx, sessionID, string(model.RoleAssistant), reply); err != nil {
		s.logger.Warn("failed to persist assistant message", "session", sessionID, "error", err)
	}
}

// keyChain is the credential lookup order for requests that carry no key:
// the user's stored key first, then the deployment's fallback file.
func (s *Server) keyChain() chat.KeyStore {
	return keyChain{server: s}
}

type keyChain struct {
	server *Server
}

func (k keyChain) GetAPIKey(ctx context.Context, userID, serviceName string) (string, error) {
	if userID != "" {
		key, err := k.server.store.GetAPIKey(ctx, userID, serviceName)
		if err != nil {
			return "", err
		}
		if key != "" {
			return key, nil
		}
	}

	if k.server.fallback != nil {
		return k.server.fallback.Get(serviceName), nil
	}
	return "", nil
}

// extractedFilesPayload shapes extracted files for the done event.
func extractedFilesPayload(files []extract.File) []map[string]string {
	payload := make([]map[string]string, 0, len(files))
	for _, f := range files {
		payload = append(payload, map[string]string{
			"path":     f.Path,
			"language": f.Language,
			"content":  f.Content,
		})
	}
	return payload
}
