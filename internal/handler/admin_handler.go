/*
Package handler provides the HTTP handlers and routing setup.

This file contains the admin key middleware and the ban, unban, rank and online endpoints.
*/
package handler

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"moonhub/internal/app/live"
	"moonhub/internal/app/user"
	"moonhub/internal/pkg/errs"
	"moonhub/internal/pkg/logx"
	"moonhub/internal/pkg/req"
	"moonhub/internal/pkg/resp"
)

// AdminKeyHeader carries the plaintext admin key checked against ADMIN_KEY_HASH.
const AdminKeyHeader = "X-Admin-Key"

// RequireAdmin rejects requests whose admin key does not match hash. An empty
// hash disables the admin API.
func RequireAdmin(hash string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(AdminKeyHeader))

			if hash == "" || key == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				logx.Warn("admin: key mismatch", "remote_ip", logx.AnonymizeIP(r.RemoteAddr))
				resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type accountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Rank     string `json:"rank"`
	Banned   bool   `json:"banned"`
}

func newAccountResponse(a user.Account) accountResponse {
	return accountResponse{
		ID:       a.ID.String(),
		Username: a.Username,
		Rank:     a.Rank,
		Banned:   a.Banned,
	}
}

// updateAccount applies fn to the account of {uuid} through the auth service,
// which also mirrors the change into the live directory record.
func updateAccount(deps *AppDeps, r *http.Request, fn func(*user.Account)) (user.Account, *errs.CustomError) {
	id, customErr := parseUserID(r)
	if customErr != nil {
		return user.Account{}, customErr
	}

	account, err := deps.Auth.UpdateAccount(r.Context(), id, fn)
	if err != nil {
		return user.Account{}, errs.NewError(errs.ErrUnknown, err)
	}

	return account, nil
}

// HandleBan bans {uuid} and closes their live session.
func HandleBan(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, customErr := updateAccount(deps, r, func(a *user.Account) { a.Banned = true })
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		kicked := deps.Hub.Kick(account.ID, live.CloseBanned, "You are banned.")
		logx.Info("admin: user banned", "user_id", account.ID.String(), "session_closed", kicked)

		resp.RespondSuccess(w, r, newAccountResponse(account))
	}
}

// HandleUnban lifts the ban of {uuid}.
func HandleUnban(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, customErr := updateAccount(deps, r, func(a *user.Account) { a.Banned = false })
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		logx.Info("admin: user unbanned", "user_id", account.ID.String())
		resp.RespondSuccess(w, r, newAccountResponse(account))
	}
}

type rankInput struct {
	Rank string `json:"rank"`
}

// HandleSetRank changes the display rank of {uuid}.
func HandleSetRank(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input rankInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		rank := strings.TrimSpace(input.Rank)
		if rank == "" || len(rank) > 32 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		account, customErr := updateAccount(deps, r, func(a *user.Account) { a.Rank = rank })
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		logx.Info("admin: rank changed", "user_id", account.ID.String(), "rank", rank)
		resp.RespondSuccess(w, r, newAccountResponse(account))
	}
}

// HandleOnline reports how many live sessions and watch groups exist.
func HandleOnline(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]int{
			"sessions": deps.Hub.Sessions.Len(),
			"groups":   deps.Hub.Watchers.Groups(),
			"users":    deps.Users.Len(),
		})
	}
}

