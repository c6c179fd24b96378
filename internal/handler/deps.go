/*
Package handler provides the HTTP handlers and routing setup.

This file defines AppDeps, the dependency container shared by all handlers.
*/
package handler

import (
	"moonhub/internal/app/auth"
	"moonhub/internal/app/avatar"
	"moonhub/internal/app/live"
	"moonhub/internal/app/user"
	"moonhub/internal/configs"
)

// AppDeps is the explicitly owned set of shared services handed to every handler.
type AppDeps struct {
	Config   *configs.AppConfig
	Settings *configs.Settings

	Users    *user.Directory
	Accounts user.AccountStore

	Auth    *auth.Service
	Avatars *avatar.Service
	Hub     *live.Hub
}
