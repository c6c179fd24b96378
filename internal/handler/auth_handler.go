/*
Package handler provides the HTTP handlers and routing setup.

This file contains the authentication handshake endpoints and the token check.
*/
package handler

import (
	"net/http"

	"moonhub/internal/pkg/auth/jwt"
	"moonhub/internal/pkg/errs"
	"moonhub/internal/pkg/logx"
	"moonhub/internal/pkg/resp"
)

// HandleAuthID issues a server id for ?username= (plain text response).
func HandleAuthID(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("username")

		serverID, err := deps.Auth.Begin(username)
		if err != nil {
			logx.Warn("auth id: rejected", "username", username, "error", err)
			resp.RespondError(w, r, handshakeError(err))
			return
		}

		resp.RespondText(w, r, serverID)
	}
}

// HandleAuthVerify completes the handshake for ?id= and returns the session token as text.
func HandleAuthVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serverID := r.URL.Query().Get("id")

		u, err := deps.Auth.Verify(r.Context(), serverID, r.UserAgent())
		if err != nil {
			logx.Warn("auth verify: failed", "error", err)
			resp.RespondError(w, r, handshakeError(err))
			return
		}

		if u.Banned {
			logx.Info("auth verify: banned user signed in", "user_id", u.ID.String())
		}

		resp.RespondText(w, r, u.Token)
	}
}

// HandleCheckAuth answers 200 "ok" when the request token resolves, 401 otherwise.
func HandleCheckAuth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := jwt.GetTokenFromContext(r)
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if _, err := deps.Auth.ResolveByToken(token); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondText(w, r, "ok")
	}
}
