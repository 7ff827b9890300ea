package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/huyndao/robux-exchange/internal/api/handler"
	"github.com/huyndao/robux-exchange/internal/api/middleware"
	"github.com/huyndao/robux-exchange/internal/api/spec"
	"github.com/huyndao/robux-exchange/internal/config"
	"github.com/huyndao/robux-exchange/internal/idempotency"
	"github.com/huyndao/robux-exchange/internal/service"
	"github.com/huyndao/robux-exchange/internal/storage"
)

// Router wires handlers, middleware and services into the HTTP surface.
type Router struct {
	cfg        *config.Config
	logger     *zap.Logger
	persister  storage.Persister
	redis      redis.Cmdable
	idemStore  *idempotency.Store
	accounts   *service.AccountService
	orders     *service.OrderService
	rates      *service.RateService
	referrals  *service.ReferralService
	complaints *service.ComplaintService
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	persister storage.Persister,
	redisClient redis.Cmdable,
	idemStore *idempotency.Store,
	accounts *service.AccountService,
	orders *service.OrderService,
	rates *service.RateService,
	referrals *service.ReferralService,
	complaints *service.ComplaintService,
) *Router {
	return &Router{
		cfg:        cfg,
		logger:     logger,
		persister:  persister,
		redis:      redisClient,
		idemStore:  idemStore,
		accounts:   accounts,
		orders:     orders,
		rates:      rates,
		referrals:  referrals,
		complaints: complaints,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	authHandler := handler.NewAuthHandler(api.accounts, api.cfg.AdminUsername, api.cfg.AdminPassword)
	orderHandler := handler.NewOrderHandler(api.orders)
	adminHandler := handler.NewAdminHandler(api.orders, api.referrals)
	rateHandler := handler.NewRateHandler(api.rates)
	complaintHandler := handler.NewComplaintHandler(api.complaints)
	healthHandler := handler.NewHealthHandler(api.persister, api.redis)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	// Public routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))

		r.Post("/v1/auth/register", authHandler.Register)
		r.Post("/v1/auth/login", authHandler.Login)
		r.Get("/v1/rate", rateHandler.GetRate)
		r.Get("/v1/users/{username}/history", orderHandler.History)
		r.Post("/v1/complaints", complaintHandler.Submit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.IdempotencyMiddleware(api.idemStore, api.logger))
			r.Post("/v1/deposits", orderHandler.CreateDeposit)
			r.Post("/v1/withdraws", orderHandler.CreateWithdraw)
		})
	})

	// Admin login is throttled harder than the public surface.
	r.With(middleware.LoginRateLimiter(api.cfg.LoginRateLimitRPM)).
		Post("/v1/admin/login", authHandler.AdminLogin)

	// Privileged routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuthMiddleware)

		r.Get("/v1/admin/orders", adminHandler.ListPending)
		r.Post("/v1/admin/deposits/{id}/approve", adminHandler.ApproveDeposit)
		r.Post("/v1/admin/withdraws/{id}/approve", adminHandler.ApproveWithdraw)
		r.Post("/v1/admin/orders/reject", adminHandler.Reject)
		r.Put("/v1/admin/rate", rateHandler.SetRate)
		r.Get("/v1/admin/referrals", adminHandler.ListReferrals)
		r.Post("/v1/admin/bonus", adminHandler.AddBonus)
		r.Get("/v1/admin/complaints", complaintHandler.List)
		r.Delete("/v1/admin/complaints/{id}", complaintHandler.Resolve)
	})

	return r
}
