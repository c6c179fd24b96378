/*
Package handler provides the HTTP handlers and routing setup.

This file contains the WebSocket entry point, which rate limits and upgrades the
connection before handing it to the hub.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"moonhub/internal/pkg/errs"
	"moonhub/internal/pkg/limiter"
	"moonhub/internal/pkg/logx"
	"moonhub/internal/pkg/resp"
)

// HandleWebSocket upgrades the connection and hands it to the hub. The
// client authenticates with its first frame, so no parameters are read here.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(limiter.ClientIP(r)))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		deps.Hub.Serve(conn)
	}
}
