/*
Package handler provides the HTTP handlers and routing setup for the moonhub server.

This file defines the main Router, applying middleware for logging, CORS and
IP-based rate limiting before delegating requests to the API and WebSocket handlers.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"moonhub/internal/pkg/auth/jwt"
	"moonhub/internal/pkg/limiter"
	"moonhub/internal/pkg/logx"
	"moonhub/internal/pkg/resp"
)

const (
	AuthRate  = 1
	AuthBurst = 10
	WSRate    = 0.2
	WSBurst   = 5
)

// perSecond turns a settings rate (requests per second) into a limiter pair.
func perSecond(n int) (rate.Limit, int) {
	if n <= 0 {
		return rate.Inf, 1
	}
	return rate.Limit(n), n
}

// Router sets up the main HTTP routing table for the application.
// The IP limiters run cleanup loops until ctx is cancelled.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	limits := deps.Settings.Rate

	uploadRate, uploadBurst := perSecond(limits.Upload)
	equipRate, equipBurst := perSecond(limits.Equip)
	downloadRate, downloadBurst := perSecond(limits.Download)

	uploadLimiter := limiter.NewIPRateLimiter(ctx, "upload", uploadRate, uploadBurst)
	equipLimiter := limiter.NewIPRateLimiter(ctx, "equip", equipRate, equipBurst)
	downloadLimiter := limiter.NewIPRateLimiter(ctx, "download", downloadRate, downloadBurst)
	authLimiter := limiter.NewIPRateLimiter(ctx, "auth", rate.Limit(AuthRate), AuthBurst)
	wsLimiter := limiter.NewIPRateLimiter(ctx, "ws", rate.Limit(WSRate), WSBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			// Game clients send no Origin header.
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", jwt.TokenHeader, AdminKeyHeader},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger("/health", "/api/motd", "/api/version", "/api/limits"))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":   "ok",
			"service":  "moonhub",
			"sessions": deps.Hub.Sessions.Len(),
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.TokenExtractorMiddleware())

		api.Get("/", HandleCheckAuth(deps))

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)
			auth.Get("/id", HandleAuthID(deps))
			auth.Get("/verify", HandleAuthVerify(deps))
		})

		api.Get("/motd", HandleMotd(deps))
		api.Get("/version", HandleVersion(deps))
		api.Get("/limits", HandleLimits(deps))

		api.With(uploadLimiter.Middleware).Put("/avatar", HandleUploadAvatar(deps))
		api.With(uploadLimiter.Middleware).Delete("/avatar", HandleDeleteAvatar(deps))
		api.With(equipLimiter.Middleware).Post("/equip", HandleEquip(deps))

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(RequireAdmin(deps.Config.AdminKeyHash))
			admin.Get("/online", HandleOnline(deps))
			admin.Post("/users/{uuid}/ban", HandleBan(deps))
			admin.Post("/users/{uuid}/unban", HandleUnban(deps))
			admin.Post("/users/{uuid}/rank", HandleSetRank(deps))
		})

		api.Get("/{uuid}", HandleProfile(deps))
		api.With(downloadLimiter.Middleware).Get("/{uuid}/avatar", HandleDownloadAvatar(deps))
	})

	r.Get("/ws", HandleWebSocket(deps, wsUpgrader, wsLimiter))

	return r
}
