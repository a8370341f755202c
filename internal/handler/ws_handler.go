/*
Package handler provides the HTTP handler function for websocket connection upgrading
and initialization.

This file contains HandleWebSocket, which is responsible for rate limiting, token
authentication, upgrading the HTTP connection to websocket, and initiating the client
lifecycle with the realtime hub.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"deskhub/internal/app/realtime"
	"deskhub/internal/pkg/auth/jwt"
	"deskhub/internal/pkg/errs"
	"deskhub/internal/pkg/limiter"
	"deskhub/internal/pkg/logx"
	"deskhub/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process websocket connection requests.
// The identity token travels in the "token" query parameter because browsers cannot
// set headers on websocket upgrades. An unauthenticated request is rejected here,
// before the connection ever reaches the hub or the registry.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			logx.Warn("WebSocket request rejected: Missing token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket request rejected: Invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := realtime.NewClient(deps.Hub, conn, payload.ID)

		go client.WritePump()

		deps.Hub.Register(client)

		logx.Info("WebSocket connection established",
			"identity", payload.ID,
			"conn_id", client.ConnID(),
			"role", payload.Role,
		)

		client.ReadPump()
	}
}
