/*
Package configs is responsible for loading and parsing the application's configuration settings.

Server parameters come from operating system environment variables: the running environment,
port, CORS allowed origins, token secret, avatar storage backend, database, session server and
admin key. Operator-editable content (message of the day, limits, badges) lives in an optional
YAML settings file, see LoadSettings.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultSessionServerURL is the upstream that confirms a player joined a server id.
const DefaultSessionServerURL = "https://sessionserver.mojang.com"

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string
	AdminKeyHash   string

	// Avatar Storage Settings
	AvatarBackend string
	AvatarsDir    string

	// S3 Storage Settings
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Database Settings; empty keeps accounts in memory.
	DatabaseDSN string

	// Authentication Settings
	SessionServerURL string

	// SettingsFile is the optional YAML settings path.
	SettingsFile string
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type conversions and validation.
// It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Port
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "6665"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	// AllowedOrigins
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	// JWTSecret
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
		jwtSecret = "your_default_insecure_secret_key_change_me"
	}
	cfg.JWTSecret = jwtSecret

	// AdminKeyHash; admin endpoints are disabled when empty.
	cfg.AdminKeyHash = os.Getenv("ADMIN_KEY_HASH")

	// --- Avatar Storage Settings ---
	cfg.AvatarBackend = strings.ToLower(os.Getenv("AVATAR_BACKEND"))
	if cfg.AvatarBackend == "" {
		cfg.AvatarBackend = "fs"
	}

	switch cfg.AvatarBackend {
	case "fs":
		cfg.AvatarsDir = os.Getenv("AVATARS_DIR")
		if cfg.AvatarsDir == "" {
			cfg.AvatarsDir = "avatars"
		}

	case "s3":
		if err := loadS3(cfg); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("invalid AVATAR_BACKEND %q: expected fs or s3", cfg.AvatarBackend)
	}

	// --- Database Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")

	// --- Authentication Settings ---
	cfg.SessionServerURL = strings.TrimRight(os.Getenv("SESSION_SERVER_URL"), "/")
	if cfg.SessionServerURL == "" {
		cfg.SessionServerURL = DefaultSessionServerURL
	}

	cfg.SettingsFile = os.Getenv("SETTINGS_FILE")

	return cfg, nil
}

func loadS3(cfg *AppConfig) error {
	// S3 Bucket Name
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	if cfg.S3BucketName == "" {
		return fmt.Errorf("S3_BUCKET_NAME environment variable is required for S3 storage connection")
	}

	// S3 Endpoint
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	if cfg.S3Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT environment variable is required for S3 storage connection")
	}

	// S3 Access Key ID
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	if cfg.S3AccessKeyID == "" {
		return fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required for S3 authentication")
	}

	// S3 Secret Access Key
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if cfg.S3SecretAccessKey == "" {
		return fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required for S3 authentication")
	}

	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
