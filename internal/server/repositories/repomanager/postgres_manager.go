// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kitlibrarian/internal/dbx"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/migrations"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/borrowers"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/deliverylog"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/loans"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Loans returns a loans.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Loans(db dbx.DBTX) loans.Repository {
	return loans.NewPostgresRepository(db)
}

// DeliveryLog returns a deliverylog.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) DeliveryLog(db dbx.DBTX) deliverylog.Repository {
	return deliverylog.NewPostgresRepository(db)
}

// Borrowers returns a borrowers.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Borrowers(db dbx.DBTX) borrowers.Repository {
	return borrowers.NewPostgresRepository(db)
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
