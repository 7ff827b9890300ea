package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/huyndao/robux-exchange/internal/api/middleware"
	"github.com/huyndao/robux-exchange/internal/service"
)

// RateHandler exposes the global exchange rate.
type RateHandler struct {
	rates *service.RateService
}

func NewRateHandler(rates *service.RateService) *RateHandler {
	return &RateHandler{rates: rates}
}

func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]int64{"rate": h.rates.Rate(r.Context())})
}

type setRateRequest struct {
	Rate int64 `json:"rate"`
}

func (h *RateHandler) SetRate(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if req.Rate <= 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-rate", "rate must be greater than zero")
		return
	}
	if err := h.rates.SetRate(r.Context(), req.Rate); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	zap.L().Info("exchange rate updated",
		zap.String("admin", middleware.AdminFromContext(r.Context())),
		zap.Int64("rate", req.Rate),
	)
	RespondJSON(w, http.StatusOK, map[string]int64{"rate": req.Rate})
}
