// filepath: internal/repository/repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"adreel/internal/config"
	"adreel/internal/logging"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"
	_ "modernc.org/sqlite" // SQLite driver
)

// Repository is the persistence gateway shared by every service.
// It is constructed once at startup and injected; it holds no per-request state.
type Repository struct {
	DB      *sql.DB
	Cache   *cache.Cache
	Builder squirrel.StatementBuilderType
	Driver  string
}

// NewRepository opens the configured database and prepares the query builder.
// It does not run migrations; see EnsureSchemaBootstrapped.
func NewRepository(cfg *config.Config) (*Repository, error) {
	driver := cfg.Database.Driver
	if driver == "" {
		driver = "sqlite"
	}

	var (
		db          *sql.DB
		err         error
		placeholder squirrel.PlaceholderFormat
	)

	switch driver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", cfg.Database.Path)
		db, err = sql.Open("sqlite", dsn)
		placeholder = squirrel.Question
	case "postgres":
		db, err = sql.Open("postgres", cfg.Database.URL)
		placeholder = squirrel.Dollar
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logging.Log.Infof("Connected to %s database.", driver)

	return &Repository{
		DB:      db,
		Cache:   cache.New(5*time.Minute, 10*time.Minute),
		Builder: squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		Driver:  driver,
	}, nil
}

// Close closes the underlying database handle.
func (s *Repository) Close() error {
	return s.DB.Close()
}

// Ping checks that the database is reachable.
func (s *Repository) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// newID returns a new lexicographically sortable row id.
func newID() string {
	return ulid.Make().String()
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// now is truncated to millisecond precision so values round-trip through storage.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
