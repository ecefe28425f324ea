// filepath: internal/repository/migration_test.go
package repository

import (
	"path/filepath"
	"testing"

	"adreel/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBlank(t *testing.T) *Repository {
	t.Helper()
	cfg := &config.Config{Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "blank.db")}}
	repo, err := NewRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLatestMigrationVersion(t *testing.T) {
	v, err := LatestMigrationVersion()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, int64(1))
}

func TestValidateSchema(t *testing.T) {
	repo := openBlank(t)

	// 1. New DB should be invalid (needs migration)
	err := repo.ValidateSchema()
	require.Error(t, err, "Fresh DB should be considered outdated")
	assert.Contains(t, err.Error(), "database schema is outdated")

	// 2. Apply Migrations (Simulate "migrate up")
	require.NoError(t, repo.Migrate("up"))

	// 3. Verify Schema is now Valid
	assert.NoError(t, repo.ValidateSchema(), "DB should be valid after applying migrations")
}

func TestEnsureSchemaBootstrapped(t *testing.T) {
	t.Run("Fresh Database", func(t *testing.T) {
		repo := openBlank(t)

		require.NoError(t, repo.EnsureSchemaBootstrapped())
		assert.NoError(t, repo.ValidateSchema(), "Fresh DB should be fully migrated after bootstrap")

		var tableName string
		err := repo.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='projects'").Scan(&tableName)
		assert.NoError(t, err)
		assert.Equal(t, "projects", tableName)
	})

	t.Run("Existing Database (Skip)", func(t *testing.T) {
		repo := openBlank(t)

		// A version table without data marks the DB as managed; bootstrap must leave it alone.
		_, err := repo.DB.Exec("CREATE TABLE goose_db_version (id INTEGER PRIMARY KEY, version_id INTEGER, is_applied BOOLEAN, tstamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP);")
		require.NoError(t, err)

		require.NoError(t, repo.EnsureSchemaBootstrapped())

		var name string
		err = repo.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='projects'").Scan(&name)
		assert.Error(t, err, "Bootstrap should have skipped migration")
		assert.Error(t, repo.ValidateSchema())
	})

	t.Run("Down and Up", func(t *testing.T) {
		repo := openBlank(t)
		require.NoError(t, repo.EnsureSchemaBootstrapped())
		require.NoError(t, repo.Migrate("down"))
		assert.Error(t, repo.ValidateSchema())
		assert.Error(t, repo.Migrate("sideways"))
	})
}
