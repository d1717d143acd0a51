package handlers

import (
	"net/http"

	"wordvault-backend/internal/services"
)

type StreakHandler struct {
	streak *services.StreakService
}

func NewStreakHandler(streak *services.StreakService) *StreakHandler {
	return &StreakHandler{streak: streak}
}

func (h *StreakHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.streak.Current())
}

func (h *StreakHandler) Bump(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.streak.Bump())
}
