// Package models defines server-side data models persisted in the database.
package models

import "time"

// Loan is an item lent to a borrower. A loan is active while ReturnDate is nil.
type Loan struct {
	ID         string
	ItemID     string
	BorrowerID string
	IssueDate  time.Time
	DueDate    time.Time
	ReturnDate *time.Time
}

// Active reports whether the item is still out.
func (l Loan) Active() bool {
	return l.ReturnDate == nil
}

// Borrower is the person a reminder is addressed to. An empty Email means
// the borrower cannot be reminded.
type Borrower struct {
	ID    string
	Name  string
	Email string
}

// HasEmail reports whether the borrower has a delivery address.
func (b Borrower) HasEmail() bool {
	return b.Email != ""
}

// Item is the borrowed book; only its title and author are used for mail content.
type Item struct {
	ID     string
	Title  string
	Author string
}

// ActiveLoan is a loan resolved together with its borrower and item.
type ActiveLoan struct {
	Loan     Loan
	Borrower Borrower
	Item     Item
}
