/*
Package handler provides the HTTP handlers and routing setup.

This file contains the profile, download, upload, delete and equip endpoints.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moonhub/internal/pkg/auth/jwt"
	"moonhub/internal/pkg/errs"
	"moonhub/internal/pkg/logx"
	"moonhub/internal/pkg/req"
	"moonhub/internal/pkg/resp"
)

// parseUserID reads the {uuid} path parameter.
func parseUserID(r *http.Request) (uuid.UUID, *errs.CustomError) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		return uuid.Nil, errs.NewError(errs.ErrInvalidParams)
	}
	return id, nil
}

// HandleProfile returns the public profile JSON of {uuid}.
func HandleProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := parseUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		profile, err := deps.Avatars.Profile(r.Context(), id)
		if err != nil {
			resp.RespondError(w, r, queryError(err))
			return
		}

		resp.RespondJSON(w, r, http.StatusOK, profile)
	}
}

// HandleDownloadAvatar streams the stored avatar bytes of {uuid}.
func HandleDownloadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := parseUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		data, err := deps.Avatars.Download(r.Context(), id)
		if err != nil {
			resp.RespondError(w, r, queryError(err))
			return
		}

		resp.RespondBytes(w, r, data)
	}
}

// HandleUploadAvatar replaces the caller's avatar with the request body.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := jwt.GetTokenFromContext(r)
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		maxSize := deps.Avatars.MaxSize()

		body, customErr := req.ReadBody(w, r, maxSize)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Avatars.Upload(r.Context(), token, body)
		if err != nil {
			resp.RespondError(w, r, mutationError(err, maxSize))
			return
		}

		logx.Info("Avatar upload accepted", "user_id", u.ID.String(), "size", len(body))
		resp.RespondText(w, r, "ok")
	}
}

// HandleDeleteAvatar removes the caller's avatar.
func HandleDeleteAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := jwt.GetTokenFromContext(r)
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if _, err := deps.Avatars.Delete(r.Context(), token); err != nil {
			resp.RespondError(w, r, mutationError(err, deps.Avatars.MaxSize()))
			return
		}

		resp.RespondText(w, r, "ok")
	}
}

// HandleEquip tells the caller's watchers to reload their avatar.
func HandleEquip(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := jwt.GetTokenFromContext(r)
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if _, err := deps.Avatars.Equip(r.Context(), token); err != nil {
			resp.RespondError(w, r, mutationError(err, deps.Avatars.MaxSize()))
			return
		}

		resp.RespondText(w, r, "ok")
	}
}
