package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/huyndao/robux-exchange/internal/service"
)

// ComplaintHandler serves submission and admin resolution of complaints.
type ComplaintHandler struct {
	complaints *service.ComplaintService
}

func NewComplaintHandler(complaints *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints}
}

type submitComplaintRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if req.User == "" || strings.TrimSpace(req.Text) == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-fields", "user and text are required")
		return
	}

	complaint, err := h.complaints.Submit(r.Context(), req.User, req.Text)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, complaint)
}

func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": h.complaints.List(r.Context()),
	})
}

func (h *ComplaintHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-id", "Invalid complaint id")
		return
	}
	if err := h.complaints.Resolve(r.Context(), id); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
