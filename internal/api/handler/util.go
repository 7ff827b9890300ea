package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/huyndao/robux-exchange/internal/api/problem"
	"github.com/huyndao/robux-exchange/internal/models"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

// RespondServiceError maps ledger-engine errors onto problem responses.
func RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrUsernameTaken):
		RespondError(w, r, http.StatusConflict, "user/username-taken", "username already exists")
	case errors.Is(err, models.ErrUserNotFound):
		RespondError(w, r, http.StatusNotFound, "user/not-found", "user not found")
	case errors.Is(err, models.ErrOrderNotFound):
		RespondError(w, r, http.StatusNotFound, "order/not-found", "order not found")
	case errors.Is(err, models.ErrOrderNotPending):
		RespondError(w, r, http.StatusConflict, "order/not-pending", "order is not pending")
	case errors.Is(err, models.ErrComplaintNotFound):
		RespondError(w, r, http.StatusNotFound, "complaint/not-found", "complaint not found")
	case errors.Is(err, models.ErrInsufficientBalance):
		RespondError(w, r, http.StatusUnprocessableEntity, "order/insufficient-balance", "insufficient balance")
	case errors.Is(err, models.ErrInvalidCredentials):
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-credentials", "invalid credentials")
	case errors.Is(err, models.ErrStorage):
		RespondError(w, r, http.StatusServiceUnavailable, "storage/unavailable", "storage unavailable, retry the request")
	default:
		RespondError(w, r, http.StatusInternalServerError, "internal-server-error", "unexpected server error")
	}
}
