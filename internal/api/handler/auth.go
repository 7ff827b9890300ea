package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/huyndao/robux-exchange/internal/api/middleware"
	"github.com/huyndao/robux-exchange/internal/service"
)

const adminTokenTTL = 24 * time.Hour

// AuthHandler serves registration, user login and the admin login.
type AuthHandler struct {
	accounts      *service.AccountService
	adminUsername string
	adminPassword string
}

func NewAuthHandler(accounts *service.AccountService, adminUsername, adminPassword string) *AuthHandler {
	return &AuthHandler{
		accounts:      accounts,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RefCode  string `json:"ref_code"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-fields", "username and password are required")
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password, req.RefCode)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"username": user.Username,
		"ref_code": user.RefCode,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"username": user.Username,
		"balance":  user.Balance,
		"ref_code": user.RefCode,
	})
}

// AdminLogin checks the shared operator credential and issues a bearer
// token. The route is rate limited upstream.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) == 1
	if !userOK || !passOK {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-credentials", "invalid credentials")
		return
	}

	token, err := middleware.IssueAdminToken(req.Username, adminTokenTTL)
	if err != nil {
		zap.L().Error("admin token signing failed", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "auth/token-signing-failed", "Failed to sign token")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}
