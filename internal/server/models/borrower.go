package models

import "time"

// StaleBorrower is a borrower record eligible for anonymization.
type StaleBorrower struct {
	ID        string
	CreatedAt time.Time
}
