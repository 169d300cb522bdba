// Package deliverylog persists DeliveryRecords in PostgreSQL. The log is
// append-only; duplicates are prevented by the reminder dedup filter rather
// than by a uniqueness constraint.
package deliverylog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/dbx"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
	"github.com/google/uuid"
)

// ErrUnknownKind rejects records whose kind is not a reminder kind.
var ErrUnknownKind = errors.New("unknown reminder kind")

// PostgresRepository implements the delivery log over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// placeholders renders "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// findChunkSize caps the loan ids bound into one query; PostgreSQL allows
// at most 65535 parameters per statement.
var findChunkSize = 1000

func (r *PostgresRepository) Find(ctx context.Context, loanIDs []string, kinds []models.Kind, sentAfter time.Time) ([]models.DeliveryRecord, error) {
	if len(loanIDs) == 0 || len(kinds) == 0 {
		return nil, nil
	}

	var result []models.DeliveryRecord
	for start := 0; start < len(loanIDs); start += findChunkSize {
		end := min(start+findChunkSize, len(loanIDs))
		found, err := r.find(ctx, loanIDs[start:end], kinds, sentAfter)
		if err != nil {
			return nil, err
		}
		result = append(result, found...)
	}
	return result, nil
}

func (r *PostgresRepository) find(ctx context.Context, loanIDs []string, kinds []models.Kind, sentAfter time.Time) ([]models.DeliveryRecord, error) {
	args := make([]any, 0, len(loanIDs)+len(kinds)+1)
	for _, id := range loanIDs {
		args = append(args, id)
	}
	for _, k := range kinds {
		args = append(args, string(k))
	}
	args = append(args, sentAfter)

	query := fmt.Sprintf(`SELECT id, student_id, transaction_id, type, sent_at FROM notification_log
		WHERE transaction_id IN (%s) AND type IN (%s) AND sent_at > $%d`,
		placeholders(1, len(loanIDs)), placeholders(len(loanIDs)+1, len(kinds)), len(args))

	return r.selectRecords(ctx, query, args...)
}

func (r *PostgresRepository) InsertMany(ctx context.Context, records []models.DeliveryRecord) InsertResult {
	const query = `INSERT INTO notification_log (id, student_id, transaction_id, type, sent_at)
		VALUES ($1, $2, $3, $4, $5)`

	res := InsertResult{Attempted: len(records)}
	for _, rec := range records {
		if !rec.Kind.Valid() {
			res.Errors = append(res.Errors, fmt.Errorf("insert %s: %w", rec.Key(), ErrUnknownKind))
			continue
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.BorrowerID, rec.LoanID, string(rec.Kind), rec.SentAt); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("insert %s: %w", rec.Key(), err))
			continue
		}
		res.Written++
	}
	return res
}

func (r *PostgresRepository) ListForBorrower(ctx context.Context, borrowerID string, since time.Time, limit int) ([]models.DeliveryRecord, error) {
	query := `SELECT id, student_id, transaction_id, type, sent_at FROM notification_log
		WHERE student_id = $1 AND sent_at > $2
		ORDER BY sent_at DESC
		LIMIT $3`
	return r.selectRecords(ctx, query, borrowerID, since, limit)
}

func (r *PostgresRepository) selectRecords(ctx context.Context, query string, args ...any) ([]models.DeliveryRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select delivery records: %w", err)
	}
	defer rows.Close()

	var result []models.DeliveryRecord
	for rows.Next() {
		var (
			item models.DeliveryRecord
			kind string
		)
		if err := rows.Scan(&item.ID, &item.BorrowerID, &item.LoanID, &kind, &item.SentAt); err != nil {
			return nil, err
		}
		item.Kind = models.Kind(kind)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
