/*
Package handler provides the HTTP handlers and routing setup for the DeskHub server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and
WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"deskhub/internal/pkg/auth/jwt"
	"deskhub/internal/pkg/limiter"
	"deskhub/internal/pkg/logx"
	"deskhub/internal/pkg/resp"
)

const (
	AuthRate    = 0.2
	AuthBurst   = 5
	WidgetRate  = 0.1
	WidgetBurst = 3
	WsRate      = 0.5
	WsBurst     = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and
// per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	widgetLimiter := limiter.NewIPRateLimiter(rate.Limit(WidgetRate), WidgetBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WsRate), WsBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "DeskHub Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
		})

		api.Route("/widget", func(widget chi.Router) {
			widget.Use(widgetLimiter.Middleware)
			widget.Get("/challenge", HandleWidgetChallenge(deps))
			widget.Post("/session", HandleWidgetSession(deps))
		})

		api.Route("/messages", func(messages chi.Router) {
			messages.Post("/", HandleSendMessage(deps))
			messages.Post("/read-all", HandleMarkAllRead(deps))
			messages.Patch("/{id}", HandleEditMessage(deps))
			messages.Delete("/{id}", HandleDeleteMessage(deps))
			messages.Post("/{id}/read", HandleMarkMessageRead(deps))
		})

		api.Get("/conversations", HandleRecentConversations(deps))
		api.Get("/conversations/{peerID}/messages", HandleConversationHistory(deps))

		api.Post("/files/presign-upload", HandlePresignUpload(deps))
		api.Get("/files/presign-download", HandlePresignDownload(deps))
	})

	r.Get("/ws", HandleWebSocket(deps, wsUpgrader, wsLimiter))

	return r
}
