package handlers

import (
	"encoding/json"
	"net/http"

	"wordvault-backend/internal/cache"
	"wordvault-backend/internal/models"
	"wordvault-backend/internal/repository"
)

// SetupHandler covers first-time configuration of the remote document:
// storing credentials, checking connectivity, and provisioning a new bin.
type SetupHandler struct {
	docs  *repository.DocumentRepo
	cache *cache.Store
}

func NewSetupHandler(docs *repository.DocumentRepo, cacheStore *cache.Store) *SetupHandler {
	return &SetupHandler{docs: docs, cache: cacheStore}
}

func (h *SetupHandler) SetCredentials(w http.ResponseWriter, r *http.Request) {
	var req models.SetCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	h.cache.SetCredentials(req.APIKey, req.BinID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Credentials saved"})
}

func (h *SetupHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	connected := h.docs.TestConnection(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

func (h *SetupHandler) Provision(w http.ResponseWriter, r *http.Request) {
	var req models.ProvisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Name == "" {
		req.Name = "wordvault"
	}

	apiKey := h.cache.Credentials().APIKey
	if apiKey == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "An API key must be configured before provisioning", r))
		return
	}

	binID, err := h.docs.ProvisionBin(r.Context(), apiKey, req.Name)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("REMOTE_ERROR", "Failed to provision a new bin", r))
		return
	}

	h.cache.SetCredentials(apiKey, binID)
	writeJSON(w, http.StatusCreated, map[string]string{"binId": binID})
}
