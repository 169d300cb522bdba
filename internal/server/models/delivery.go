package models

import (
	"fmt"
	"time"
)

// Kind is the reminder category a loan was notified under.
type Kind string

const (
	KindDueSoon Kind = "dueSoon"
	KindOverdue Kind = "overdue"
)

// Kinds lists every reminder kind in a stable order.
var Kinds = []Kind{KindDueSoon, KindOverdue}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDueSoon || k == KindOverdue
}

// DeliveryRecord says that a reminder of Kind was sent for LoanID to
// BorrowerID at SentAt. Records are append-only.
type DeliveryRecord struct {
	ID         string
	BorrowerID string
	LoanID     string
	Kind       Kind
	SentAt     time.Time
}

// Key identifies the (loan, kind) pair the dedup window is keyed on.
func (r DeliveryRecord) Key() string {
	return DedupKey(r.LoanID, r.Kind)
}

// DedupKey builds the (loan, kind) lookup key.
func DedupKey(loanID string, kind Kind) string {
	return fmt.Sprintf("%s|%s", loanID, kind)
}
