// filepath: internal/repository/schema.go
package repository

import (
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"adreel/internal/db/migrations"
	"adreel/internal/logging"

	"github.com/pressly/goose/v3"
)

// gooseDialect maps the configured driver onto goose's dialect names.
func (s *Repository) gooseDialect() string {
	if s.Driver == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

func (s *Repository) prepareGoose() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect(s.gooseDialect())
}

// Migrate runs a goose command ("up", "down", "status") against the embedded migrations.
func (s *Repository) Migrate(command string) error {
	if err := s.prepareGoose(); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	// The migrations directory is embedded, so "." is the root of the FS.
	switch command {
	case "up":
		return goose.Up(s.DB, ".")
	case "down":
		return goose.Down(s.DB, ".")
	case "status":
		return goose.Status(s.DB, ".")
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// versionTableExists reports whether goose has ever touched this database.
func (s *Repository) versionTableExists() (bool, error) {
	var query string
	if s.Driver == "postgres" {
		query = "SELECT count(*) FROM information_schema.tables WHERE table_name = 'goose_db_version'"
	} else {
		query = "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'goose_db_version'"
	}
	var n int
	if err := s.DB.QueryRow(query).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnsureSchemaBootstrapped migrates a brand-new database to the latest version.
// A database that already has a version table is left alone so upgrades stay
// an explicit `migrate up`.
func (s *Repository) EnsureSchemaBootstrapped() error {
	exists, err := s.versionTableExists()
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists {
		return nil
	}

	logging.Log.Info("Empty database detected, applying migrations.")
	return s.Migrate("up")
}

// ValidateSchema fails when the database is behind the embedded migrations.
func (s *Repository) ValidateSchema() error {
	latest, err := LatestMigrationVersion()
	if err != nil {
		return err
	}

	exists, err := s.versionTableExists()
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	var current int64
	if exists {
		if err := s.prepareGoose(); err != nil {
			return err
		}
		if current, err = goose.GetDBVersion(s.DB); err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
	}

	if current < latest {
		return fmt.Errorf("database schema is outdated (version %d, expected %d); run 'adreel migrate up'", current, latest)
	}
	return nil
}

// LatestMigrationVersion returns the highest version embedded in the binary.
func LatestMigrationVersion() (int64, error) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return 0, err
	}
	var latest int64
	for _, f := range files {
		prefix, _, ok := strings.Cut(path.Base(f), "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}
