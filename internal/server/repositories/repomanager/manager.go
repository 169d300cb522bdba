package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kitlibrarian/internal/dbx"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/borrowers"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/deliverylog"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/loans"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Loans(db dbx.DBTX) loans.Repository
	DeliveryLog(db dbx.DBTX) deliverylog.Repository
	Borrowers(db dbx.DBTX) borrowers.Repository
}
