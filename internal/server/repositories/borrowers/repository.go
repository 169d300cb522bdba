package borrowers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
)

type Repository interface {
	// SelectStale returns up to limit non-anonymized borrowers created before cutoff, oldest first.
	SelectStale(ctx context.Context, cutoff time.Time, limit int) ([]models.StaleBorrower, error)
	// Anonymize replaces personal data of a borrower and stamps anonymized_at.
	Anonymize(ctx context.Context, id, name, phone string, at time.Time) error
}
