// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/folio/internal/cache"
	"github.com/olegiv/folio/internal/handler"
	"github.com/olegiv/folio/internal/middleware"
)

// RouterConfig configures the middleware stack around the handlers.
type RouterConfig struct {
	Logger         *slog.Logger
	IsDevelopment  bool
	CSRFKey        []byte
	TrustedOrigins []string
	CORSOrigins    []string

	// PublicMaxAge and PublicSWR are the s-maxage and
	// stale-while-revalidate seconds of public list responses.
	PublicMaxAge int
	PublicSWR    int

	// ResponseCache stores anonymous GET responses when set.
	ResponseCache cache.Cache
	CacheTTL      time.Duration

	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
}

// NewRouter assembles the HTTP routes of the server.
func NewRouter(h *Handler, health *handler.HealthHandler, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit, cfg.RateBurst = 100, 200
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSOrigins}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteAPIError(w, http.StatusMethodNotAllowed, "", "Method not allowed")
	})

	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	requireAdmin := middleware.RequireAdmin(h.auth)
	publicCache := middleware.PublicCache(cfg.PublicMaxAge, cfg.PublicSWR)
	loginLimit := h.loginProtection.Middleware()

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewGlobalRateLimiter(cfg.RateLimit, cfg.RateBurst).Middleware())
		r.Use(middleware.SkipCSRFForBearer)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey, cfg.TrustedOrigins, cfg.IsDevelopment)))
		if cfg.ResponseCache != nil {
			r.Use(middleware.NewResponseCache(cfg.ResponseCache, cfg.CacheTTL, h.auth, h.cfg.CookieName).Middleware())
		}

		r.Get("/status", h.Status)

		r.Route("/admin", func(r chi.Router) {
			r.With(loginLimit).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.With(loginLimit).Post("/change-password", h.ChangePassword)
		})

		r.Route("/articles", func(r chi.Router) {
			r.With(publicCache).Get("/", h.ListArticles)
			r.With(requireAdmin).Post("/", h.CreateArticle)
			r.Get("/{slug}", h.GetArticle)
			r.With(requireAdmin).Put("/{slug}", h.UpdateArticle)
			r.With(requireAdmin).Delete("/{slug}", h.DeleteArticle)
			r.Post("/{slug}/view", h.RecordArticleView)
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(publicCache).Get("/", h.ListProjects)
			r.With(requireAdmin).Post("/", h.CreateProject)
			r.Get("/{slug}", h.GetProject)
			r.With(requireAdmin).Put("/{slug}", h.UpdateProject)
			r.With(requireAdmin).Delete("/{slug}", h.DeleteProject)
		})

		r.Route("/timeline", func(r chi.Router) {
			r.With(publicCache).Get("/", h.ListTimelineEvents)
			r.With(requireAdmin).Post("/", h.CreateTimelineEvent)
			r.Get("/{id}", h.GetTimelineEvent)
			r.With(requireAdmin).Put("/{id}", h.UpdateTimelineEvent)
			r.With(requireAdmin).Delete("/{id}", h.DeleteTimelineEvent)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", h.CreateMessage)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", h.ListMessages)
				r.Get("/{id}", h.GetMessage)
				r.Put("/{id}", h.UpdateMessage)
				r.Delete("/{id}", h.DeleteMessage)
			})
		})

		r.Route("/site-config", func(r chi.Router) {
			r.With(publicCache).Get("/", h.GetSiteConfig)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Put("/", h.PutSiteConfig)
				r.Post("/", h.BatchSiteConfig)
				r.Delete("/", h.DeleteSiteConfig)
			})
		})

		r.Route("/kv/{namespace}", func(r chi.Router) {
			r.With(publicCache).Get("/", h.ListKV)
			r.Get("/{key}", h.GetKV)
			r.With(requireAdmin).Put("/{key}", h.PutKV)
			r.With(requireAdmin).Delete("/{key}", h.DeleteKV)
		})
	})

	return r
}
