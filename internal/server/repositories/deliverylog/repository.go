package deliverylog

import (
	"context"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
)

// InsertResult reports the outcome of a best-effort batch insert.
type InsertResult struct {
	Attempted int
	Written   int
	Errors    []error
}

// Complete reports whether every attempted record was written.
func (r InsertResult) Complete() bool {
	return r.Written == r.Attempted
}

// Repository is the append-only log of reminders already sent.
type Repository interface {
	// Find returns records for any of loanIDs with any of kinds sent strictly after sentAfter.
	Find(ctx context.Context, loanIDs []string, kinds []models.Kind, sentAfter time.Time) ([]models.DeliveryRecord, error)
	// InsertMany writes each record independently; a failed row does not stop the rest.
	InsertMany(ctx context.Context, records []models.DeliveryRecord) InsertResult
	// ListForBorrower returns a borrower's records sent after since, newest first.
	ListForBorrower(ctx context.Context, borrowerID string, since time.Time, limit int) ([]models.DeliveryRecord, error)
}
