package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
)

// LoanStore is the read side of the lending data the reminders need.
type LoanStore interface {
	FindActive(ctx context.Context) ([]models.ActiveLoan, error)
	FindActiveByBorrower(ctx context.Context, borrowerID string) ([]models.ActiveLoan, error)
}

// Item is one loan as it appears in a reminder.
type Item struct {
	LoanID  string
	Title   string
	Author  string
	DueDate time.Time
}

// Batch holds one borrower's due-soon and overdue items for a single cycle.
type Batch struct {
	Borrower models.Borrower
	DueSoon  []Item
	Overdue  []Item
}

// Empty reports whether the batch has nothing to remind about.
func (b Batch) Empty() bool {
	return len(b.DueSoon) == 0 && len(b.Overdue) == 0
}

// Records returns one DeliveryRecord per (loan, kind) in the batch.
func (b Batch) Records(sentAt time.Time) []models.DeliveryRecord {
	out := make([]models.DeliveryRecord, 0, len(b.DueSoon)+len(b.Overdue))
	add := func(items []Item, kind models.Kind) {
		for _, it := range items {
			out = append(out, models.DeliveryRecord{
				BorrowerID: b.Borrower.ID,
				LoanID:     it.LoanID,
				Kind:       kind,
				SentAt:     sentAt,
			})
		}
	}
	add(b.DueSoon, models.KindDueSoon)
	add(b.Overdue, models.KindOverdue)
	return out
}

// GroupBatches classifies loans at now and groups them per borrower.
// Borrowers without an email and borrowers with nothing classified are
// dropped. Batches keep the order in which borrowers first appear.
func GroupBatches(loans []models.ActiveLoan, now time.Time, window time.Duration) []Batch {
	index := make(map[string]int)
	var batches []Batch

	for _, l := range loans {
		if !l.Loan.Active() || !l.Borrower.HasEmail() {
			continue
		}
		kind, ok := Classify(l.Loan.DueDate, now, window)
		if !ok {
			continue
		}

		i, seen := index[l.Borrower.ID]
		if !seen {
			i = len(batches)
			index[l.Borrower.ID] = i
			batches = append(batches, Batch{Borrower: l.Borrower})
		}

		item := Item{LoanID: l.Loan.ID, Title: l.Item.Title, Author: l.Item.Author, DueDate: l.Loan.DueDate}
		if kind == models.KindOverdue {
			batches[i].Overdue = append(batches[i].Overdue, item)
		} else {
			batches[i].DueSoon = append(batches[i].DueSoon, item)
		}
	}
	return batches
}

// BatchBuilder turns the active loans of the store into reminder batches.
type BatchBuilder struct {
	store  LoanStore
	window time.Duration
}

func NewBatchBuilder(store LoanStore, dueSoonDays int) *BatchBuilder {
	return &BatchBuilder{store: store, window: DueSoonWindow(dueSoonDays)}
}

// Build reads every active loan and returns the batches due at now. A store
// failure returns no batches and an error matching common.ErrStoreUnavailable.
func (b *BatchBuilder) Build(ctx context.Context, now time.Time) ([]Batch, error) {
	loans, err := b.store.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return GroupBatches(loans, now, b.window), nil
}

// BuildForBorrower returns the current batch of a single borrower, or
// common.ErrorNotFound when the borrower has nothing to be reminded about.
func (b *BatchBuilder) BuildForBorrower(ctx context.Context, borrowerID string, now time.Time) (Batch, error) {
	loans, err := b.store.FindActiveByBorrower(ctx, borrowerID)
	if err != nil {
		return Batch{}, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	for _, batch := range GroupBatches(loans, now, b.window) {
		if batch.Borrower.ID == borrowerID {
			return batch, nil
		}
	}
	return Batch{}, common.ErrorNotFound
}
