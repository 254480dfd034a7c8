package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/auth"
	"github.com/pocket-crm/analytics-api/internal/config"
	"github.com/pocket-crm/analytics-api/internal/http/handler"
	"github.com/pocket-crm/analytics-api/internal/http/middleware"
	"github.com/pocket-crm/analytics-api/internal/service"
)

// APIPrefix is the mount point of the statistics API
const APIPrefix = "/api/crm"

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	reportHandler  *handler.ReportHandler
	healthHandler  *handler.HealthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	reportHandler *handler.ReportHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		reportHandler:  reportHandler,
		healthHandler:  healthHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", rt.healthHandler.Live)
	r.Get("/health/db", rt.healthHandler.Database)
	r.Get("/health/ready", rt.healthHandler.Ready)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(middleware.UserLogger(rt.logger))
		r.Use(rt.rateLimiter.LimitByUser)
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(requestTimeout(timeout))
		}

		r.Route("/stats", func(r chi.Router) {
			for _, name := range service.ReportNames {
				r.With(rt.authMiddleware.RequireRole(name.AllowedRoles()...)).
					Get("/"+string(name), rt.reportHandler.Report(name))
			}
		})

		r.Route("/email", func(r chi.Router) {
			r.Get("/global-stats", rt.reportHandler.GlobalEmailStats)
			r.Get("/campaign-stats-list", rt.reportHandler.CampaignEmailStatsList)
			r.Get("/campaign-stats/{campaignId}", rt.reportHandler.CampaignEmailStats)
		})
	})

	return r
}
