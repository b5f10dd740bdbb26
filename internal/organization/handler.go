package organization

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
	"github.com/WailSalutem-Health-Care/membership-service/internal/pagination"
	"github.com/gorilla/mux"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Organization *Organization `json:"organization,omitempty"`
	Member       *Member       `json:"member,omitempty"`
}

type PreviewResponse struct {
	Success      bool                 `json:"success"`
	Organization *OrganizationPreview `json:"organization"`
}

type MyOrganizationResponse struct {
	HasOrganization bool        `json:"has_organization"`
	Membership      *Membership `json:"membership,omitempty"`
}

func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	result, err := h.service.CreateOrganization(r.Context(), principal.UserID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SuccessResponse{
		Success:      true,
		Message:      result.Message("created"),
		Organization: &result.Organization,
		Member:       &result.Member,
	})
}

func (h *Handler) JoinOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id, ok := organizationIDFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.service.JoinOrganization(r.Context(), principal.UserID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{
		Success:      true,
		Message:      result.Message("joined"),
		Organization: &result.Organization,
		Member:       &result.Member,
	})
}

// GetOrganization previews an organization before joining it
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id, ok := organizationIDFromPath(w, r)
	if !ok {
		return
	}

	preview, err := h.service.PreviewOrganization(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusInternalServerError, "lookup_failed", "Failed to search organization. Please try again.")
		return
	}

	respondJSON(w, http.StatusOK, PreviewResponse{Success: true, Organization: preview})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id, ok := organizationIDFromPath(w, r)
	if !ok {
		return
	}

	resp, err := h.service.ListMembers(r.Context(), principal.UserID, id, pagination.ParseParams(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetMyOrganization reports the caller's membership; lookup failures read as "none"
func (h *Handler) GetMyOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	membership := h.service.GetUserMembership(r.Context(), principal.UserID)
	respondJSON(w, http.StatusOK, MyOrganizationResponse{
		HasOrganization: membership != nil,
		Membership:      membership,
	})
}

// NormalizeOrganizationID applies the id rules to raw input for the setup form
func (h *Handler) NormalizeOrganizationID(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	id := NormalizeID(req.Input)
	resp := NormalizeResponse{ID: id, Valid: true}
	if err := ValidateID(id); err != nil {
		resp.Valid = false
		resp.Error = UserMessage(err)
	}
	respondJSON(w, http.StatusOK, resp)
}

func organizationIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := NormalizeID(mux.Vars(r)["id"])
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Organization ID is required")
		return "", false
	}
	if err := ValidateID(id); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", UserMessage(err))
		return "", false
	}
	return id, true
}

// respondServiceError maps workflow errors onto status codes
func respondServiceError(w http.ResponseWriter, err error) {
	message := UserMessage(err)
	switch {
	case IsValidation(err):
		respondError(w, http.StatusBadRequest, "validation_error", message)
	case IsPartialFailure(err):
		respondError(w, http.StatusInternalServerError, "partial_failure", message)
	case errors.Is(err, ErrMissingIdentity):
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", message)
	case errors.Is(err, ErrAlreadyExists):
		respondError(w, http.StatusConflict, "already_exists", message)
	case errors.Is(err, ErrAlreadyMember):
		respondError(w, http.StatusConflict, "already_member", message)
	case errors.Is(err, ErrNotAMember):
		respondError(w, http.StatusForbidden, "forbidden", message)
	case errors.Is(err, ErrJoinFailed):
		respondError(w, http.StatusInternalServerError, "join_failed", message)
	case errors.Is(err, ErrCreateFailed):
		respondError(w, http.StatusInternalServerError, "creation_failed", message)
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", message)
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
