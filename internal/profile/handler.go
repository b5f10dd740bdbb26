package profile

import (
	"encoding/json"
	"net/http"

	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondUnauthenticated(w)
		return
	}
	respondJSON(w, http.StatusOK, h.service.Profile(r.Context(), principal))
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondUnauthenticated(w)
		return
	}
	respondJSON(w, http.StatusOK, h.service.Dashboard(r.Context(), principal))
}

func respondUnauthenticated(w http.ResponseWriter) {
	respondJSON(w, http.StatusUnauthorized, map[string]string{
		"error":   "unauthenticated",
		"message": "User not authenticated",
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
