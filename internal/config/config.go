// filepath: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
	JWT      JWTConfig      `toml:"jwt"`

	JWTSecret string `toml:"-"` // Runtime secret (from env, flag, or file)

	// Runtime computed values
	MaxUploadSizeBytes int64         `toml:"-"`
	OrphanGrace        time.Duration `toml:"-"`
	SweepInterval      time.Duration `toml:"-"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Host             string   `toml:"host"`
	Port             int      `toml:"port"`
	MaxUploadSize    string   `toml:"max_upload_size"` // e.g. "100MB"
	UploadRatePerMin int      `toml:"upload_rate_per_min"`
	AllowedOrigins   []string `toml:"allowed_origins"`
	AdminEmails      []string `toml:"admin_emails"` // accounts allowed to manage users
}

// DatabaseConfig selects the SQL backend.
type DatabaseConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	Path   string `toml:"path"`   // sqlite file
	URL    string `toml:"url"`    // postgres DSN
}

// StorageConfig holds the S3-compatible (R2) bucket settings.
type StorageConfig struct {
	AccountID       string `toml:"account_id"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Bucket          string `toml:"bucket"`
	PublicDomain    string `toml:"public_domain"`
	Endpoint        string `toml:"endpoint"` // overrides the R2 endpoint derived from AccountID
	Region          string `toml:"region"`
	OrphanGrace     string `toml:"orphan_grace"`   // e.g. "24h", "2d"
	SweepInterval   string `toml:"sweep_interval"` // "0" disables the background sweeper
}

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	Level        string `toml:"level"`
	AuditEnabled bool   `toml:"audit_enabled"`
}

// JWTConfig holds settings for token generation.
type JWTConfig struct {
	AccessDurationMin    int    `toml:"access_duration_min"`
	RefreshDurationHours int    `toml:"refresh_duration_hours"`
	Secret               string `toml:"secret"` // Persisted secret
}

// ResolvedEndpoint returns the S3 API endpoint for the bucket.
func (s StorageConfig) ResolvedEndpoint() string {
	if s.Endpoint != "" {
		return strings.TrimRight(s.Endpoint, "/")
	}
	if s.AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.AccountID)
	}
	return ""
}

// Enabled reports whether enough is configured to talk to the bucket.
func (s StorageConfig) Enabled() bool {
	return s.ResolvedEndpoint() != "" && s.Bucket != ""
}

// LoadConfig loads the configuration from a TOML file.
func LoadConfig(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the current configuration back to a TOML file.
// Used to persist the auto-generated JWT secret.
func SaveConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file for saving: %w", err)
	}
	defer f.Close()
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config to file: %w", err)
	}
	return nil
}

// ApplyDefaults fills every unset value with its default.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadSize == "" {
		c.Server.MaxUploadSize = "100MB"
	}
	if c.Server.UploadRatePerMin == 0 {
		c.Server.UploadRatePerMin = 30
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "adreel.db"
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "adreel"
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "auto"
	}
	if c.Storage.OrphanGrace == "" {
		c.Storage.OrphanGrace = "24h"
	}
	if c.Storage.SweepInterval == "" {
		c.Storage.SweepInterval = "0"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.JWT.AccessDurationMin == 0 {
		c.JWT.AccessDurationMin = 15
	}
	if c.JWT.RefreshDurationHours == 0 {
		c.JWT.RefreshDurationHours = 24
	}
}

// ParseAndValidate processes configuration strings into runtime values.
// It sets defaults if values are missing and parses human-readable sizes and durations.
func (c *Config) ParseAndValidate() error {
	c.ApplyDefaults()

	sizeBytes, err := parseSize(c.Server.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	c.MaxUploadSizeBytes = sizeBytes

	if c.OrphanGrace, err = parseDuration(c.Storage.OrphanGrace); err != nil {
		return fmt.Errorf("invalid orphan_grace: %w", err)
	}
	if c.SweepInterval, err = parseDuration(c.Storage.SweepInterval); err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}

	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	return nil
}

// parseSize parses a size string (e.g., "100G", "500MB") into bytes.
func parseSize(sizeStr string) (int64, error) {
	re := regexp.MustCompile(`(?i)^(\d+)\s*(K|M|G|T)?B?$`)
	matches := re.FindStringSubmatch(strings.TrimSpace(sizeStr))

	if len(matches) < 2 {
		return 0, fmt.Errorf("invalid size format: %s", sizeStr)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number: %s", matches[1])
	}

	unit := ""
	if len(matches) > 2 {
		unit = strings.ToUpper(matches[2])
	}

	switch unit {
	case "T":
		return value * (1 << 40), nil
	case "G":
		return value * (1 << 30), nil
	case "M":
		return value * (1 << 20), nil
	case "K":
		return value * (1 << 10), nil
	default:
		return value, nil
	}
}

// parseDuration extends time.ParseDuration with a "d" (day) suffix.
// A bare "0" means disabled.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days < 0 {
			return 0, fmt.Errorf("invalid day format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration: %s", s)
	}
	return d, nil
}
