package server

import (
	"net/http"

	"scrapingai/provider"
)

// validService rejects lookups for services the router will never use.
func validService(name string) bool {
	return name == provider.ServiceOpenAI || name == provider.ServiceAnthropic
}

// handleGetAPIKey returns the stored key for (user, service) so the chat
// client can attach it to requests.
func (s *Server) handleGetAPIKey(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	service := r.PathValue("service")
	if !validService(service) {
		writeError(w, http.StatusBadRequest, "unknown service name")
		return
	}

	key, err := s.store.GetAPIKey(r.Context(), userID, service)
	if err != nil {
		s.logger.Error("failed to load API key", "user", userID, "service", service, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load API key")
		return
	}
	if key == "" {
		writeError(w, http.StatusNotFound, "no API key stored for this service")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"service_name": service, "api_key": key})
}

type setAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	service := r.PathValue("service")
	if !validService(service) {
		writeError(w, http.StatusBadRequest, "unknown service name")
		return
	}

	var req setAPIKeyRequest
	if err := decodeJSON(r, &req); err != nil || req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := s.store.SetAPIKey(r.Context(), userID, service, req.APIKey); err != nil {
		s.logger.Error("failed to store API key", "user", userID, "service", service, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store API key")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
