package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ADREEL_SERVER_PORT.
const EnvPrefix = "ADREEL"

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"host":            "server.host",
	"port":            "server.port",
	"max-upload-size": "server.max_upload_size",
	"db-driver":       "database.driver",
	"db-path":         "database.path",
	"db-url":          "database.url",
	"bucket":          "storage.bucket",
	"log-level":       "logging.level",
	"audit-enabled":   "logging.audit_enabled",
	"jwt-secret":      "jwt_secret",
	"sweep-interval":  "storage.sweep_interval",
}

// NewOverlay builds a viper instance that resolves environment variables
// and any flags from fs that were explicitly set. fs may be nil.
func NewOverlay(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for flagName, key := range flagKeys {
			if f := fs.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}
	return v, nil
}

// ApplyOverrides copies every value set in the overlay onto c.
// Flags take precedence over environment variables.
func (c *Config) ApplyOverrides(v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			if s := v.GetString(key); s != "" {
				*dst = s
			}
		}
	}

	str("server.host", &c.Server.Host)
	if v.IsSet("server.port") && v.GetInt("server.port") != 0 {
		c.Server.Port = v.GetInt("server.port")
	}
	str("server.max_upload_size", &c.Server.MaxUploadSize)
	if v.IsSet("server.upload_rate_per_min") {
		c.Server.UploadRatePerMin = v.GetInt("server.upload_rate_per_min")
	}
	if v.IsSet("server.allowed_origins") {
		if origins := v.GetStringSlice("server.allowed_origins"); len(origins) > 0 {
			c.Server.AllowedOrigins = origins
		}
	}
	if v.IsSet("server.admin_emails") {
		if admins := v.GetStringSlice("server.admin_emails"); len(admins) > 0 {
			c.Server.AdminEmails = admins
		}
	}

	str("database.driver", &c.Database.Driver)
	str("database.path", &c.Database.Path)
	str("database.url", &c.Database.URL)

	str("storage.account_id", &c.Storage.AccountID)
	str("storage.access_key_id", &c.Storage.AccessKeyID)
	str("storage.secret_access_key", &c.Storage.SecretAccessKey)
	str("storage.bucket", &c.Storage.Bucket)
	str("storage.public_domain", &c.Storage.PublicDomain)
	str("storage.endpoint", &c.Storage.Endpoint)
	str("storage.region", &c.Storage.Region)
	str("storage.orphan_grace", &c.Storage.OrphanGrace)
	str("storage.sweep_interval", &c.Storage.SweepInterval)

	str("logging.level", &c.Logging.Level)
	if v.IsSet("logging.audit_enabled") {
		c.Logging.AuditEnabled = v.GetBool("logging.audit_enabled")
	}

	str("jwt_secret", &c.JWTSecret)
}
