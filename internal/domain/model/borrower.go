package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BorrowerProfile is the identity-level view of a borrower used by feature
// computation. It carries no raw event data.
type BorrowerProfile struct {
	BorrowerID      string
	AccountOpenedAt time.Time
	LinkedAccounts  int
	Region          string
}

// BehavioralEventType classifies a raw borrower event.
type BehavioralEventType string

const (
	EventTypeTransaction BehavioralEventType = "transaction"
	EventTypePayment     BehavioralEventType = "payment"
	EventTypeLogin       BehavioralEventType = "login"
)

// BehavioralEvent is a single raw event from the borrower's history. Raw
// events are visible only to the feature engine; every scoring consumer works
// from the derived feature vector instead.
type BehavioralEvent struct {
	EventID    string
	BorrowerID string
	Type       BehavioralEventType
	Amount     decimal.Decimal
	OccurredAt time.Time
	OnTime     bool
}

// LoanRequest carries the terms a borrower is applying for. Terms are
// optional on a decision request; when present they must be coherent.
type LoanRequest struct {
	RequestedAmount decimal.Decimal
	Currency        string
	TermMonths      int
	Purpose         string
}

// NewLoanRequest validates and builds the requested terms. A zero amount
// means the caller asked for a decision without naming terms.
func NewLoanRequest(amount decimal.Decimal, termMonths int, purpose string) (LoanRequest, error) {
	if amount.IsNegative() {
		return LoanRequest{}, fmt.Errorf("requested amount must not be negative, got %s", amount)
	}
	if termMonths < 0 {
		return LoanRequest{}, fmt.Errorf("term months must not be negative, got %d", termMonths)
	}
	if amount.IsPositive() && termMonths == 0 {
		return LoanRequest{}, fmt.Errorf("term months are required when an amount is requested")
	}
	return LoanRequest{
		RequestedAmount: amount,
		Currency:        "USD",
		TermMonths:      termMonths,
		Purpose:         purpose,
	}, nil
}

// HasTerms reports whether the borrower named concrete terms.
func (r LoanRequest) HasTerms() bool {
	return r.RequestedAmount.IsPositive()
}

// Describe renders the terms for the audit trail.
func (r LoanRequest) Describe() string {
	s := fmt.Sprintf("%s %s over %d months", r.RequestedAmount.StringFixed(2), r.Currency, r.TermMonths)
	if r.Purpose != "" {
		s += ": " + r.Purpose
	}
	return s
}
