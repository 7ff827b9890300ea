package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huyndao/robux-exchange/internal/storage"
)

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	persister storage.Persister
	redis     redis.Cmdable
}

func NewHealthHandler(persister storage.Persister, redis redis.Cmdable) *HealthHandler {
	return &HealthHandler{persister: persister, redis: redis}
}

// Live always reports OK – if the process is up, it's live.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready checks the snapshot backend and redis when configured.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if h.persister != nil {
		if err := h.persister.Ping(ctx); err != nil {
			RespondError(w, r, http.StatusServiceUnavailable, "health/storage", "storage unavailable")
			return
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			RespondError(w, r, http.StatusServiceUnavailable, "health/redis", "redis unavailable")
			return
		}
	}

	RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
