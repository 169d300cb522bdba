package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoan_Active(t *testing.T) {
	ret := time.Now()
	assert.True(t, Loan{}.Active())
	assert.False(t, Loan{ReturnDate: &ret}.Active())
}

func TestBorrower_HasEmail(t *testing.T) {
	assert.True(t, Borrower{Email: "a@b.c"}.HasEmail())
	assert.False(t, Borrower{}.HasEmail())
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindDueSoon.Valid())
	assert.True(t, KindOverdue.Valid())
	assert.False(t, Kind("returned").Valid())
}

func TestDeliveryRecord_Key(t *testing.T) {
	r := DeliveryRecord{LoanID: "tx1", Kind: KindOverdue}
	assert.Equal(t, "tx1|overdue", r.Key())
	assert.Equal(t, r.Key(), DedupKey("tx1", KindOverdue))
}
