/*
Package handler provides the HTTP handlers and routing setup.

This file serves the motd, version and limits endpoints from the settings.
*/
package handler

import (
	"net/http"

	"moonhub/internal/app/badges"
	"moonhub/internal/configs"
	"moonhub/internal/pkg/resp"
)

type rateLimitsResponse struct {
	PingSize int `json:"pingSize"`
	PingRate int `json:"pingRate"`
	Equip    int `json:"equip"`
	Download int `json:"download"`
	Upload   int `json:"upload"`
}

type avatarLimitsResponse struct {
	MaxAvatarSize int64         `json:"maxAvatarSize"`
	MaxAvatars    int           `json:"maxAvatars"`
	AllowedBadges badges.Badges `json:"allowedBadges"`
}

// LimitsResponse is the body of GET /api/limits.
type LimitsResponse struct {
	Rate   rateLimitsResponse   `json:"rate"`
	Limits avatarLimitsResponse `json:"limits"`
}

// NewLimitsResponse renders the settings limits in client form.
func NewLimitsResponse(s *configs.Settings) LimitsResponse {
	return LimitsResponse{
		Rate: rateLimitsResponse{
			PingSize: s.Rate.PingSize,
			PingRate: s.Rate.PingRate,
			Equip:    s.Rate.Equip,
			Download: s.Rate.Download,
			Upload:   s.Rate.Upload,
		},
		Limits: avatarLimitsResponse{
			MaxAvatarSize: s.Limits.MaxAvatarSize,
			MaxAvatars:    s.Limits.MaxAvatars,
		},
	}
}

// HandleMotd returns the message of the day as a JSON text component.
func HandleMotd(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondText(w, r, deps.Settings.Motd)
	}
}

// HandleVersion returns the advertised client release pair.
func HandleVersion(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondJSON(w, r, http.StatusOK, deps.Settings.Version)
	}
}

// HandleLimits returns the rate and size limits.
func HandleLimits(deps *AppDeps) http.HandlerFunc {
	limits := NewLimitsResponse(deps.Settings)

	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondJSON(w, r, http.StatusOK, limits)
	}
}
