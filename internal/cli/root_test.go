// filepath: internal/cli/root_test.go
package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"adreel/internal/config"
	"adreel/internal/models"
	"adreel/internal/repository"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCommand builds a command carrying the same flags as the root run and parses args.
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cfg = nil
	cfgFile = defaultConfigPath

	cmd := &cobra.Command{Use: "test"}
	registerFlags(cmd)
	registerServerFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestConfigPrecedence(t *testing.T) {
	// RootCmd.Execute() would start the server, so initializeConfig is driven directly.

	t.Run("Defaults", func(t *testing.T) {
		cmd := newTestCommand(t, "--config_path", filepath.Join(t.TempDir(), "missing.toml"))
		require.NoError(t, initializeConfig(cmd))

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, int64(100<<20), cfg.MaxUploadSizeBytes)
		assert.Equal(t, 24*time.Hour, cfg.OrphanGrace)
		assert.Zero(t, cfg.SweepInterval)
	})

	t.Run("Environment Overrides Defaults", func(t *testing.T) {
		t.Setenv("ADREEL_SERVER_PORT", "9090")
		t.Setenv("ADREEL_LOGGING_LEVEL", "warn")
		t.Setenv("ADREEL_STORAGE_SWEEP_INTERVAL", "1h")

		cmd := newTestCommand(t, "--config_path", filepath.Join(t.TempDir(), "missing.toml"))
		require.NoError(t, initializeConfig(cmd))

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, time.Hour, cfg.SweepInterval)
	})

	t.Run("Flags Override Environment", func(t *testing.T) {
		t.Setenv("ADREEL_SERVER_PORT", "9090")

		cmd := newTestCommand(t, "--config_path", filepath.Join(t.TempDir(), "missing.toml"), "--port", "7070", "--audit-enabled")
		require.NoError(t, initializeConfig(cmd))

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.True(t, cfg.Logging.AuditEnabled)
	})

	t.Run("Config File Loading", func(t *testing.T) {
		content := []byte(`
[server]
port = 6060
[logging]
level = "error"
[storage]
orphan_grace = "2d"
`)
		path := filepath.Join(t.TempDir(), "test_config.toml")
		require.NoError(t, os.WriteFile(path, content, 0644))

		cmd := newTestCommand(t, "--config_path", path)
		require.NoError(t, initializeConfig(cmd))

		assert.Equal(t, 6060, cfg.Server.Port)
		assert.Equal(t, "error", cfg.Logging.Level)
		assert.Equal(t, 48*time.Hour, cfg.OrphanGrace)
	})

	t.Run("Config Path From Environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "env.toml")
		require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 5050\n"), 0644))
		t.Setenv("ADREEL_CONFIG_PATH", path)

		cmd := newTestCommand(t)
		require.NoError(t, initializeConfig(cmd))
		assert.Equal(t, 5050, cfg.Server.Port)
	})

	t.Run("Dotenv File", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADREEL_SERVER_HOST=127.0.0.1\n"), 0644))
		t.Chdir(dir)
		t.Cleanup(func() { os.Unsetenv("ADREEL_SERVER_HOST") })

		cmd := newTestCommand(t)
		require.NoError(t, initializeConfig(cmd))
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	})

	t.Run("Invalid Values", func(t *testing.T) {
		cmd := newTestCommand(t, "--config_path", filepath.Join(t.TempDir(), "missing.toml"), "--db-driver", "mysql")
		err := initializeConfig(cmd)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration error")
	})
}

// useTestDatabase points the global config at a fresh sqlite file.
func useTestDatabase(t *testing.T) {
	t.Helper()
	cfgFile = filepath.Join(t.TempDir(), "config.toml")
	cfg = &config.Config{Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "cli.db")}}
	require.NoError(t, cfg.ParseAndValidate())
}

func TestUserCommands(t *testing.T) {
	useTestDatabase(t)
	ctx := context.Background()

	userEmail, userPassword = "ops@example.com", "short"
	assert.Error(t, runUserAdd(ctx), "password policy applies")

	userPassword = "long-enough-secret"
	require.NoError(t, runUserAdd(ctx))
	assert.Error(t, runUserAdd(ctx), "duplicate email")

	require.NoError(t, runUserList(ctx))

	repo, err := repository.NewRepository(cfg)
	require.NoError(t, err)
	defer repo.Close()
	u, err := repo.GetUserByEmail(ctx, "OPS@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestRecovery(t *testing.T) {
	useTestDatabase(t)
	ctx := context.Background()

	repo, err := openRepository(true)
	require.NoError(t, err)
	org, err := repo.CreateOrganizationWithOwner(ctx, "Org", "org-recovery", "user-1")
	require.NoError(t, err)
	p := &models.Project{OrganizationID: org.ID, Name: "bare", Platform: "tiktok", Status: models.StatusDraft, OutputConfig: models.DefaultOutputConfig()}
	require.NoError(t, repo.CreateProject(ctx, p))
	repo.Close()

	require.NoError(t, runRecovery(ctx))

	repo, err = repository.NewRepository(cfg)
	require.NoError(t, err)
	defer repo.Close()
	kit, err := repo.PrimaryBrandKit(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "#000000", kit.PrimaryColor)

	missing, err := repo.ProjectsWithoutBrandKit(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSweepCommand(t *testing.T) {
	useTestDatabase(t)
	repo, err := openRepository(true)
	require.NoError(t, err)
	repo.Close()

	var out bytes.Buffer
	err = runSweep(context.Background(), &out)
	assert.Error(t, err, "storage is not configured")
	assert.Empty(t, out.String())
}

func TestPrintSweepReport(t *testing.T) {
	report := &models.SweepReport{Scanned: 12, Orphaned: 3, Deleted: 2, Failed: 1, BytesFreed: 2048,
		Keys: []string{"projects/p1/images/1_abcdef_a.png"}}

	var out bytes.Buffer
	printSweepReport(&out, report, false)
	assert.Contains(t, out.String(), "SCANNED")
	assert.Contains(t, out.String(), "2.0 kB")
	assert.NotContains(t, out.String(), "1_abcdef_a.png")

	out.Reset()
	printSweepReport(&out, report, true)
	assert.Contains(t, out.String(), "projects/p1/images/1_abcdef_a.png")
}
