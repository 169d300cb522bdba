package reminders

import (
	"context"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
)

// Preview renders what the borrower would receive now, ignoring the
// delivery log. Nothing is sent or written.
func (d *Dispatcher) Preview(ctx context.Context, borrowerID string) (Email, error) {
	b, err := d.builder.BuildForBorrower(ctx, borrowerID, d.clock.Now())
	if err != nil {
		return Email{}, err
	}
	return Render(b), nil
}

const (
	feedLookback = 30 * 24 * time.Hour
	feedLimit    = 50
)

// Notification is one entry of a borrower's reminder history.
type Notification struct {
	ID      string    `json:"id"`
	LoanID  string    `json:"loan_id"`
	Kind    string    `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

func notificationFor(r models.DeliveryRecord) Notification {
	n := Notification{ID: r.ID, LoanID: r.LoanID, Kind: string(r.Kind), SentAt: r.SentAt}
	if r.Kind == models.KindOverdue {
		n.Title = "Overdue reminder"
		n.Message = "You have an overdue book."
	} else {
		n.Title = "Due soon reminder"
		n.Message = "A borrowed book is due soon."
	}
	return n
}

// Notifications lists reminders sent to a borrower in the last 30 days,
// newest first, at most 50.
func (d *Dispatcher) Notifications(ctx context.Context, borrowerID string) ([]Notification, error) {
	records, err := d.log.ListForBorrower(ctx, borrowerID, d.clock.Now().Add(-feedLookback), feedLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(records))
	for _, r := range records {
		out = append(out, notificationFor(r))
	}
	return out, nil
}
