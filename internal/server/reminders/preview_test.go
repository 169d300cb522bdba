package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview_IgnoresLogAndSendsNothing(t *testing.T) {
	h := newHarness(t, enabled(), activeLoan("l1", "s1", "s1@example.com", t0.AddDate(0, 0, -3)))
	h.log.records = []models.DeliveryRecord{{LoanID: "l1", BorrowerID: "s1", Kind: models.KindOverdue, SentAt: t0}}

	e, err := h.d.Preview(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Overdue library books", e.Subject)
	assert.Contains(t, e.Text, "Title l1 by Author l1")

	assert.Zero(t, h.log.finds)
	assert.Zero(t, h.log.inserts)
	assert.Empty(t, h.transport.messages())
}

func TestPreview_WorksWhenDisabled(t *testing.T) {
	opts := enabled()
	opts.Enabled = false
	h := newHarness(t, opts, activeLoan("l1", "s1", "s1@example.com", t0.AddDate(0, 0, 1)))

	e, err := h.d.Preview(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Upcoming due library books", e.Subject)
}

func TestPreview_NothingDue(t *testing.T) {
	h := newHarness(t, enabled(), activeLoan("l1", "s1", "s1@example.com", t0.AddDate(0, 0, 7)))

	_, err := h.d.Preview(context.Background(), "s1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestNotifications_MapsRecentRecords(t *testing.T) {
	h := newHarness(t, enabled())
	h.log.records = []models.DeliveryRecord{
		{ID: "r1", LoanID: "l1", BorrowerID: "s1", Kind: models.KindDueSoon, SentAt: t0.Add(-48 * time.Hour)},
		{ID: "r2", LoanID: "l1", BorrowerID: "s1", Kind: models.KindOverdue, SentAt: t0.Add(-time.Hour)},
		{ID: "r3", LoanID: "l2", BorrowerID: "s1", Kind: models.KindOverdue, SentAt: t0.AddDate(0, 0, -31)},
		{ID: "r4", LoanID: "l3", BorrowerID: "s2", Kind: models.KindOverdue, SentAt: t0},
	}

	got, err := h.d.Notifications(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Notification{
		ID: "r2", LoanID: "l1", Kind: "overdue", SentAt: t0.Add(-time.Hour),
		Title: "Overdue reminder", Message: "You have an overdue book.",
	}, got[0])
	assert.Equal(t, "Due soon reminder", got[1].Title)
	assert.Equal(t, "A borrowed book is due soon.", got[1].Message)
}
