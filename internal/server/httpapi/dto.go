package httpapi

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/subdash/internal/common"
	"github.com/dmitrijs2005/subdash/internal/server/models"
	"github.com/dmitrijs2005/subdash/internal/timex"
	"github.com/shopspring/decimal"
)

type registerRequest struct {
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	DOB              string          `json:"dob"`
	SubscriptionType string          `json:"subscription_type"`
	DurationMonths   int             `json:"duration_months"`
	PaymentStatus    bool            `json:"payment_status"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
}

func (r registerRequest) toModel() (models.NewMember, error) {
	dob, err := time.Parse(timex.DateLayout, r.DOB)
	if err != nil {
		return models.NewMember{}, fmt.Errorf("%w: dob must be YYYY-MM-DD, got %q", common.ErrorValidation, r.DOB)
	}

	return models.NewMember{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		DOB:              dob,
		SubscriptionType: r.SubscriptionType,
		DurationMonths:   r.DurationMonths,
		PaymentStatus:    r.PaymentStatus,
		AmountPaid:       r.AmountPaid,
	}, nil
}

type registerResponse struct {
	ID                int64  `json:"id"`
	SubscriptionStart string `json:"subscription_start"`
	SubscriptionEnd   string `json:"subscription_end"`
}

type memberDTO struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	DOB               string `json:"dob"`
	SubscriptionType  string `json:"subscription_type"`
	SubscriptionStart string `json:"subscription_start"`
	SubscriptionEnd   string `json:"subscription_end"`
	PaymentStatus     bool   `json:"payment_status"`
	AmountPaid        string `json:"amount_paid"`
	MembershipStatus  string `json:"membership_status"`
}

func toMemberDTO(m models.Member) memberDTO {
	return memberDTO{
		ID:                m.ID,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		DOB:               m.DOB.Format(timex.DateLayout),
		SubscriptionType:  m.SubscriptionType,
		SubscriptionStart: m.SubscriptionStart.Format(timex.DateLayout),
		SubscriptionEnd:   m.SubscriptionEnd.Format(timex.DateLayout),
		PaymentStatus:     m.PaymentStatus,
		AmountPaid:        m.AmountPaid.StringFixed(2),
		MembershipStatus:  m.MembershipStatus,
	}
}

type revenueDTO struct {
	Month   string `json:"month"`
	Revenue string `json:"revenue"`
}

type trendDTO struct {
	SubscriptionType string `json:"subscription_type"`
	Count            int64  `json:"count"`
}

func toTrendDTOs(rows []models.MembershipTrend) []trendDTO {
	out := make([]trendDTO, 0, len(rows))
	for _, t := range rows {
		out = append(out, trendDTO{SubscriptionType: t.SubscriptionType, Count: t.Count})
	}
	return out
}

type summaryDTO struct {
	ActiveSubscriptions int        `json:"active_subscriptions"`
	TotalRevenue        string     `json:"total_revenue"`
	Trends              []trendDTO `json:"membership_trends"`
}

type archiveResponse struct {
	URL string `json:"url"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}
