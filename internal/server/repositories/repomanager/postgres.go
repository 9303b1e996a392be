// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/migrations"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/files"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/folders"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/heartbeats"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/nominees"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/otplogs"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/refreshtokens"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/smartdocs"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/users"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/vaultitems"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Heartbeats(db dbx.DBTX) heartbeats.Repository {
	return heartbeats.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Nominees(db dbx.DBTX) nominees.Repository {
	return nominees.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) VaultItems(db dbx.DBTX) vaultitems.Repository {
	return vaultitems.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SmartDocs(db dbx.DBTX) smartdocs.Repository {
	return smartdocs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Folders(db dbx.DBTX) folders.Repository {
	return folders.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return files.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) OTPLogs(db dbx.DBTX) otplogs.Repository {
	return otplogs.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
