package loans

import (
	"context"

	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
)

// Repository gives read access to active loans resolved with their borrower
// and item. Loans whose borrower or item cannot be resolved are not returned.
type Repository interface {
	FindActive(ctx context.Context) ([]models.ActiveLoan, error)
	FindActiveByBorrower(ctx context.Context, borrowerID string) ([]models.ActiveLoan, error)
}
