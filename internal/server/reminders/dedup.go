package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/deliverylog"
)

// DeliveryLog is the append-only record of sent reminders.
type DeliveryLog interface {
	Find(ctx context.Context, loanIDs []string, kinds []models.Kind, sentAfter time.Time) ([]models.DeliveryRecord, error)
	InsertMany(ctx context.Context, records []models.DeliveryRecord) deliverylog.InsertResult
	ListForBorrower(ctx context.Context, borrowerID string, since time.Time, limit int) ([]models.DeliveryRecord, error)
}

// DefaultDedupWindow is how long a sent (loan, kind) pair is suppressed.
const DefaultDedupWindow = 24 * time.Hour

// DedupFilter removes items that were already reminded about within window.
// It takes no locks; callers serialize cycles themselves.
type DedupFilter struct {
	log    DeliveryLog
	window time.Duration
}

func NewDedupFilter(log DeliveryLog, window time.Duration) *DedupFilter {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &DedupFilter{log: log, window: window}
}

// Filter drops items with a DeliveryRecord sent after now-window. A batch
// left empty is dropped and counted once in skipped.
func (f *DedupFilter) Filter(ctx context.Context, batches []Batch, now time.Time) ([]Batch, int, error) {
	var loanIDs []string
	seen := make(map[string]struct{})
	for _, b := range batches {
		for _, items := range [][]Item{b.DueSoon, b.Overdue} {
			for _, it := range items {
				if _, ok := seen[it.LoanID]; ok {
					continue
				}
				seen[it.LoanID] = struct{}{}
				loanIDs = append(loanIDs, it.LoanID)
			}
		}
	}
	if len(loanIDs) == 0 {
		return batches, 0, nil
	}

	recent, err := f.log.Find(ctx, loanIDs, models.Kinds, now.Add(-f.window))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read delivery log: %w", err)
	}

	sent := make(map[string]struct{}, len(recent))
	for _, r := range recent {
		sent[r.Key()] = struct{}{}
	}

	keep := func(items []Item, kind models.Kind) []Item {
		var out []Item
		for _, it := range items {
			if _, ok := sent[models.DedupKey(it.LoanID, kind)]; !ok {
				out = append(out, it)
			}
		}
		return out
	}

	filtered := make([]Batch, 0, len(batches))
	skipped := 0
	for _, b := range batches {
		b.DueSoon = keep(b.DueSoon, models.KindDueSoon)
		b.Overdue = keep(b.Overdue, models.KindOverdue)
		if b.Empty() {
			skipped++
			continue
		}
		filtered = append(filtered, b)
	}
	return filtered, skipped, nil
}
