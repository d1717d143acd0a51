package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wordvault-backend/internal/models"
	"wordvault-backend/internal/services"
	"wordvault-backend/internal/websocket"
)

type WordHandler struct {
	words      *services.WordService
	hub        *websocket.Hub
	dailyLimit int
}

func NewWordHandler(words *services.WordService, hub *websocket.Hub, dailyLimit int) *WordHandler {
	return &WordHandler{words: words, hub: hub, dailyLimit: dailyLimit}
}

func (h *WordHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date query parameter is required", r))
		return
	}

	words := h.words.WordsByDate(r.Context(), date)
	writeJSON(w, http.StatusOK, map[string]interface{}{"words": words})
}

func (h *WordHandler) Count(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date query parameter is required", r))
		return
	}

	count := h.words.CountForDate(r.Context(), date)
	writeJSON(w, http.StatusOK, models.WordCountResponse{
		Date:         date,
		Count:        count,
		Total:        h.words.TotalCount(r.Context()),
		LimitReached: count >= h.dailyLimit,
	})
}

func (h *WordHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	// policy check, re-checked rather than atomically enforced
	if h.words.IsDailyLimitReached(r.Context(), req.Date, h.dailyLimit) {
		writeJSON(w, http.StatusConflict, errorResp("DAILY_LIMIT_REACHED", "Daily word limit reached for this date", r))
		return
	}

	word, err := h.words.AddWord(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.hub.Broadcast(models.WSMessage{
		Type:    "collection_changed",
		Payload: models.CollectionChangedEvent{Action: "added", WordID: word.ID, Date: word.Date},
	})

	writeJSON(w, http.StatusCreated, map[string]interface{}{"word": word})
}

func (h *WordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	word, err := h.words.UpdateWord(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.hub.Broadcast(models.WSMessage{
		Type:    "collection_changed",
		Payload: models.CollectionChangedEvent{Action: "updated", WordID: word.ID, Date: word.Date},
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{"word": word})
}

func (h *WordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.words.DeleteWord(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.hub.Broadcast(models.WSMessage{
		Type:    "collection_changed",
		Payload: models.CollectionChangedEvent{Action: "deleted", WordID: id},
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Word deleted"})
}

func (h *WordHandler) MarkLearned(w http.ResponseWriter, r *http.Request) {
	h.words.MarkLearned(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Word marked learned"})
}

func (h *WordHandler) UnmarkLearned(w http.ResponseWriter, r *http.Request) {
	h.words.UnmarkLearned(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Word unmarked"})
}
