package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyRevenue is the paid amount collected in one calendar month,
// keyed by the first day of that month.
type MonthlyRevenue struct {
	Month   time.Time
	Revenue decimal.Decimal
}

// MembershipTrend counts members per subscription type.
type MembershipTrend struct {
	SubscriptionType string
	Count            int64
}

// Summary holds the dashboard headline metrics.
type Summary struct {
	ActiveSubscriptions int
	TotalRevenue        decimal.Decimal
	Trends              []MembershipTrend
}
