package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/huyndao/robux-exchange/internal/api/middleware"
	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/service"
)

// AdminHandler serves the privileged review operations: pending queues,
// approvals, rejections, referrals and manual bonuses.
type AdminHandler struct {
	orders    *service.OrderService
	referrals *service.ReferralService
}

func NewAdminHandler(orders *service.OrderService, referrals *service.ReferralService) *AdminHandler {
	return &AdminHandler{orders: orders, referrals: referrals}
}

func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	deposits, withdraws, err := h.orders.PendingOrders(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"deposits":  deposits,
		"withdraws": withdraws,
	})
}

func (h *AdminHandler) ApproveDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	order, err := h.orders.ApproveDeposit(r.Context(), id)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	zap.L().Info("admin approved deposit",
		zap.String("admin", middleware.AdminFromContext(r.Context())),
		zap.Int64("order_id", order.ID),
	)
	RespondJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) ApproveWithdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	order, err := h.orders.ApproveWithdraw(r.Context(), id)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	zap.L().Info("admin approved withdraw",
		zap.String("admin", middleware.AdminFromContext(r.Context())),
		zap.Int64("order_id", order.ID),
	)
	RespondJSON(w, http.StatusOK, order)
}

type rejectRequest struct {
	ID    int64  `json:"id"`
	Queue string `json:"type"`
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if req.Queue != domain.QueueDeposits && req.Queue != domain.QueueWithdraws {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-type", "type must be deposits or withdraws")
		return
	}
	if err := h.orders.Reject(r.Context(), req.ID, req.Queue); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) ListReferrals(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"referrals": h.referrals.ListReferrals(r.Context()),
	})
}

type addBonusRequest struct {
	User   string `json:"user"`
	Amount int64  `json:"amount"`
}

func (h *AdminHandler) AddBonus(w http.ResponseWriter, r *http.Request) {
	var req addBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if req.User == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-user", "user is required")
		return
	}
	if req.Amount <= 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "amount must be greater than zero")
		return
	}
	if err := h.referrals.AddBonus(r.Context(), req.User, req.Amount); err != nil {
		RespondServiceError(w, r, err)
		return
	}
	zap.L().Info("admin granted bonus",
		zap.String("admin", middleware.AdminFromContext(r.Context())),
		zap.String("user", req.User),
		zap.Int64("amount", req.Amount),
	)
	RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-id", "Invalid order id")
		return 0, false
	}
	return id, true
}
