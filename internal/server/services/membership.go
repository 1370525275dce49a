package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/subdash/internal/common"
	"github.com/dmitrijs2005/subdash/internal/server/models"
	"github.com/dmitrijs2005/subdash/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/subdash/internal/timex"
)

// DaysPerMonth is the fixed month length used for subscription periods.
// A 12-month subscription therefore lasts 360 days, not a calendar year.
const DaysPerMonth = 30

// SubscriptionEndDate returns start + months*DaysPerMonth days.
func SubscriptionEndDate(start time.Time, months int) time.Time {
	return start.AddDate(0, 0, DaysPerMonth*months)
}

// MembershipService registers members.
type MembershipService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	opts        options
}

func NewMembershipService(db *sql.DB, m repomanager.RepositoryManager, opts ...Option) *MembershipService {
	return &MembershipService{db: db, repomanager: m, opts: buildOptions(opts)}
}

// Register stores a new member whose subscription starts today and ends
// DurationMonths*30 days later. The row is written by a single
// auto-committed INSERT; duplicates of an existing person are allowed.
//
// Invalid input (non-positive duration, negative amount) is rejected with
// common.ErrConstraint before storage is touched.
func (s *MembershipService) Register(ctx context.Context, in models.NewMember) (*models.Registration, error) {
	reg, err := s.register(ctx, in)
	s.opts.observer.ObserveRegistration(err)
	return reg, err
}

func (s *MembershipService) register(ctx context.Context, in models.NewMember) (*models.Registration, error) {
	if in.DurationMonths <= 0 {
		return nil, fmt.Errorf("%w: duration_months must be positive, got %d", common.ErrConstraint, in.DurationMonths)
	}
	if in.AmountPaid.IsNegative() {
		return nil, fmt.Errorf("%w: amount_paid must not be negative, got %s", common.ErrConstraint, in.AmountPaid)
	}

	start := timex.Today(s.opts.now)
	member := &models.Member{
		Name:              in.Name,
		Email:             in.Email,
		Phone:             in.Phone,
		Address:           in.Address,
		DOB:               timex.Date(in.DOB),
		SubscriptionType:  in.SubscriptionType,
		SubscriptionStart: start,
		SubscriptionEnd:   SubscriptionEndDate(start, in.DurationMonths),
		PaymentStatus:     in.PaymentStatus,
		AmountPaid:        in.AmountPaid,
		MembershipStatus:  models.MembershipStatusActive,
	}

	id, err := s.repomanager.Members(s.db).Create(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("error registering member: %w", err)
	}

	return &models.Registration{
		ID:                id,
		SubscriptionStart: member.SubscriptionStart,
		SubscriptionEnd:   member.SubscriptionEnd,
	}, nil
}
