// Package loans provides the PostgreSQL-backed read model over lending
// transactions used by the reminder engine.
package loans

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/kitlibrarian/internal/dbx"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
)

const selectActive = `
	SELECT t.id, t.book_id, t.student_id, t.issue_date, t.due_date,
		s.name, COALESCE(s.email, ''), b.title, b.author
	FROM transactions t
		JOIN students s ON s.id = t.student_id
		JOIN books b ON b.id = t.book_id
	WHERE t.return_date IS NULL`

// PostgresRepository implements loan reads over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindActive returns every loan that has not been returned yet.
func (r *PostgresRepository) FindActive(ctx context.Context) ([]models.ActiveLoan, error) {
	return r.query(ctx, selectActive)
}

// FindActiveByBorrower returns the active loans of a single borrower.
func (r *PostgresRepository) FindActiveByBorrower(ctx context.Context, borrowerID string) ([]models.ActiveLoan, error) {
	return r.query(ctx, selectActive+` AND t.student_id = $1`, borrowerID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.ActiveLoan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select active loans: %w", err)
	}
	defer rows.Close()

	var result []models.ActiveLoan
	for rows.Next() {
		var item models.ActiveLoan
		if err := rows.Scan(
			&item.Loan.ID, &item.Loan.ItemID, &item.Loan.BorrowerID, &item.Loan.IssueDate, &item.Loan.DueDate,
			&item.Borrower.Name, &item.Borrower.Email, &item.Item.Title, &item.Item.Author,
		); err != nil {
			return nil, err
		}
		item.Borrower.ID = item.Loan.BorrowerID
		item.Item.ID = item.Loan.ItemID
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
