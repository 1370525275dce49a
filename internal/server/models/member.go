// Package models defines the records persisted in and read from the
// dashboard database.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipStatusActive is the status every member is created with.
const MembershipStatusActive = "active"

// Member is one registered subscriber (a row of the members table).
// Dates are calendar dates at midnight UTC.
type Member struct {
	ID                int64
	Name              string
	Email             string
	Phone             string
	Address           string
	DOB               time.Time
	SubscriptionType  string
	SubscriptionStart time.Time
	SubscriptionEnd   time.Time
	PaymentStatus     bool
	AmountPaid        decimal.Decimal
	MembershipStatus  string
}

// NewMember carries the registration form. Subscription dates are not part
// of it: the start is the registration day and the end is derived.
type NewMember struct {
	Name             string
	Email            string
	Phone            string
	Address          string
	DOB              time.Time
	SubscriptionType string
	DurationMonths   int
	PaymentStatus    bool
	AmountPaid       decimal.Decimal
}

// Registration is the outcome of registering a member.
type Registration struct {
	ID                int64
	SubscriptionStart time.Time
	SubscriptionEnd   time.Time
}
