// Package borrowers contains the PostgreSQL access needed by the retention job.
package borrowers

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/dbx"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SelectStale(ctx context.Context, cutoff time.Time, limit int) ([]models.StaleBorrower, error) {
	query := `SELECT id, created_at FROM students
		WHERE anonymized_at IS NULL AND created_at < $1
		ORDER BY created_at
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select stale borrowers: %w", err)
	}
	defer rows.Close()

	var result []models.StaleBorrower
	for rows.Next() {
		var item models.StaleBorrower
		if err := rows.Scan(&item.ID, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Anonymize rewrites the borrower's name and phone. The email is kept so
// reminders for loans still out keep reaching the borrower.
func (r *PostgresRepository) Anonymize(ctx context.Context, id, name, phone string, at time.Time) error {
	query := `UPDATE students SET name = $2, phone_number = $3, anonymized_at = $4
		WHERE id = $1 AND anonymized_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, name, phone, at)
	if err != nil {
		return fmt.Errorf("failed to anonymize borrower %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
