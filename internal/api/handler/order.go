package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/service"
)

// OrderHandler serves deposit/withdraw creation and order history.
type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createDepositRequest struct {
	User     string `json:"user"`
	Amount   int64  `json:"amount"`
	Type     string `json:"type"`
	Seri     string `json:"seri"`
	Code     string `json:"code"`
	CardType string `json:"card_type"`
}

func (h *OrderHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req createDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if req.User == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-user", "user is required")
		return
	}
	if req.Amount <= 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "Amount must be greater than zero")
		return
	}
	orderType := strings.ToLower(strings.TrimSpace(req.Type))
	if orderType != domain.OrderTypeQR && orderType != domain.OrderTypeCard {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-type", "type must be qr or card")
		return
	}
	if orderType == domain.OrderTypeCard && (req.Seri == "" || req.Code == "") {
		RespondError(w, r, http.StatusBadRequest, "request/missing-card-details", "seri and code are required for card deposits")
		return
	}

	order, err := h.orders.CreateDeposit(r.Context(), service.CreateDepositInput{
		User:     req.User,
		Amount:   req.Amount,
		Type:     orderType,
		Seri:     req.Seri,
		Code:     req.Code,
		CardType: req.CardType,
	})
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, order)
}

type createWithdrawRequest struct {
	User  string `json:"user"`
	Robux int64  `json:"robux"`
	To    string `json:"to"`
}

func (h *OrderHandler) CreateWithdraw(w http.ResponseWriter, r *http.Request) {
	var req createWithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if req.User == "" || req.To == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-fields", "user and to are required")
		return
	}
	if req.Robux <= 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "robux must be greater than zero")
		return
	}

	order, err := h.orders.CreateWithdraw(r.Context(), req.User, req.Robux, req.To)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	deposits, withdraws, err := h.orders.History(r.Context(), username)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"deposits":  deposits,
		"withdraws": withdraws,
	})
}
