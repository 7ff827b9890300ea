package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/huyndao/robux-exchange/internal/observability"
	"github.com/huyndao/robux-exchange/internal/service"
)

// SweepWorker periodically fails pending orders that outlived the
// pending TTL. The sweep also runs eagerly on history and admin reads,
// so the worker only bounds how long a dead order can linger unseen.
type SweepWorker struct {
	orders   *service.OrderService
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSweepWorker(orders *service.OrderService) *SweepWorker {
	return &SweepWorker{
		orders:   orders,
		interval: 10 * time.Minute,
		stopCh:   make(chan struct{}),
	}
}

// WithInterval updates the poll interval.
func (w *SweepWorker) WithInterval(interval time.Duration) *SweepWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Start blocks and sweeps at the configured interval until the context
// is canceled or Stop is called.
func (w *SweepWorker) Start(ctx context.Context) {
	zap.L().Info("sweep worker starting", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("sweep worker stopping", zap.String("reason", "context canceled"))
			return
		case <-w.stopCh:
			zap.L().Info("sweep worker stopping", zap.String("reason", "stop requested"))
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop signals the worker to stop.
func (w *SweepWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Run starts the worker in a goroutine and returns its stop function.
func (w *SweepWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *SweepWorker) sweep(ctx context.Context) {
	expired, err := w.orders.SweepExpired(ctx, time.Now())
	if err != nil {
		observability.IncrementWorkerRun("sweep", "error")
		zap.L().Error("expiry sweep failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("sweep", "ok")
	if expired > 0 {
		zap.L().Info("expired pending orders", zap.Int("count", expired))
	}
}
