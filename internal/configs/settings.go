/*
Package configs loads application configuration.

This file reads the optional YAML settings file served by the info endpoints.
*/
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"moonhub/internal/app/badges"
)

// DefaultVersion is advertised when the settings file names no client version.
const DefaultVersion = "0.1.4"

// Settings is the operator-editable content served by the info endpoints.
type Settings struct {
	Motd    string      `yaml:"motd"`
	Version VersionInfo `yaml:"version"`
	Limits  Limits      `yaml:"limits"`
	Rate    RateLimits  `yaml:"rate"`

	// AdvancedUsers grants badges by user id.
	AdvancedUsers map[string]AdvancedUser `yaml:"advanced_users"`

	badgesByID map[uuid.UUID]badges.Badges
}

// VersionInfo is the client release pair.
type VersionInfo struct {
	Release    string `yaml:"release" json:"release"`
	Prerelease string `yaml:"prerelease" json:"prerelease"`
}

// Limits bounds avatar uploads.
type Limits struct {
	MaxAvatarSize int64 `yaml:"max_avatar_size"`
	MaxAvatars    int   `yaml:"max_avatars"`
}

// RateLimits are the per-client rates advertised to clients and enforced by the server.
type RateLimits struct {
	PingSize int `yaml:"ping_size"`
	PingRate int `yaml:"ping_rate"`
	Equip    int `yaml:"equip"`
	Download int `yaml:"download"`
	Upload   int `yaml:"upload"`
}

// AdvancedUser carries the badges granted to one user.
type AdvancedUser struct {
	Username string         `yaml:"username"`
	Special  badges.Special `yaml:"special"`
	Pride    badges.Pride   `yaml:"pride"`
}

// DefaultSettings returns the settings used when no file is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Motd: `{"text":"Welcome to moonhub!","color":"gold"}`,
		Version: VersionInfo{
			Release:    DefaultVersion,
			Prerelease: DefaultVersion,
		},
		Limits: Limits{
			MaxAvatarSize: 100 * 1000,
			MaxAvatars:    10,
		},
		Rate: RateLimits{
			PingSize: 1024,
			PingRate: 32,
			Equip:    1,
			Download: 50,
			Upload:   1,
		},
		AdvancedUsers: map[string]AdvancedUser{},
		badgesByID:    map[uuid.UUID]badges.Badges{},
	}
}

// LoadSettings reads the YAML file at path over DefaultSettings. An empty
// path or a missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if err := s.index(); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}

	return s, nil
}

// index validates AdvancedUsers keys and builds the badge lookup.
func (s *Settings) index() error {
	s.badgesByID = make(map[uuid.UUID]badges.Badges, len(s.AdvancedUsers))

	for key, u := range s.AdvancedUsers {
		id, err := uuid.Parse(key)
		if err != nil {
			return fmt.Errorf("advanced_users key %q is not a uuid: %w", key, err)
		}
		s.badgesByID[id] = badges.Badges{Special: u.Special, Pride: u.Pride}
	}

	if s.Limits.MaxAvatarSize <= 0 {
		return fmt.Errorf("limits.max_avatar_size must be positive, got %d", s.Limits.MaxAvatarSize)
	}

	return nil
}

// BadgesFor returns the badges granted to id; zero badges when none are configured.
func (s *Settings) BadgesFor(id uuid.UUID) badges.Badges {
	return s.badgesByID[id]
}
