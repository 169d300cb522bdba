package reminders

import (
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/server/models"
)

// IsOverdue reports whether an active loan due at due is overdue at now.
// A loan due exactly at now is not yet overdue.
func IsOverdue(due, now time.Time) bool {
	return due.Before(now)
}

// IsDueSoon reports whether due falls in [now, now+window).
func IsDueSoon(due, now time.Time, window time.Duration) bool {
	return !due.Before(now) && due.Before(now.Add(window))
}

// Classify returns the reminder kind for a loan due at due, or false when
// the loan needs no reminder at now.
func Classify(due, now time.Time, window time.Duration) (models.Kind, bool) {
	switch {
	case IsOverdue(due, now):
		return models.KindOverdue, true
	case IsDueSoon(due, now, window):
		return models.KindDueSoon, true
	default:
		return "", false
	}
}

// DueSoonWindow converts a whole number of days into the lookahead window.
func DueSoonWindow(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
