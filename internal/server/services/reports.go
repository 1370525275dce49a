package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/subdash/internal/server/models"
	"github.com/dmitrijs2005/subdash/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/subdash/internal/timex"
	"github.com/shopspring/decimal"
)

// ReportService computes the dashboard reports. Every call reads the
// current table state; nothing is cached.
type ReportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	opts        options
}

func NewReportService(db *sql.DB, m repomanager.RepositoryManager, opts ...Option) *ReportService {
	return &ReportService{db: db, repomanager: m, opts: buildOptions(opts)}
}

// ActiveSubscriptions lists members with subscription_end >= today and
// membership_status = "active". The stored status is never transitioned,
// so the date check is what drops expired members.
func (s *ReportService) ActiveSubscriptions(ctx context.Context) ([]models.Member, error) {
	started := time.Now()
	res, err := s.repomanager.Members(s.db).ListActive(ctx, timex.Today(s.opts.now))
	s.opts.observer.ObserveReport(string(ReportActiveSubscriptions), time.Since(started), err)
	if err != nil {
		return nil, fmt.Errorf("error loading active subscriptions: %w", err)
	}
	return res, nil
}

// MonthlyRevenue sums paid amounts per month of subscription start.
func (s *ReportService) MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {
	started := time.Now()
	res, err := s.repomanager.Members(s.db).MonthlyRevenue(ctx)
	s.opts.observer.ObserveReport(string(ReportMonthlyRevenue), time.Since(started), err)
	if err != nil {
		return nil, fmt.Errorf("error loading monthly revenue: %w", err)
	}
	return res, nil
}

// MembershipTrends counts members per subscription type.
func (s *ReportService) MembershipTrends(ctx context.Context) ([]models.MembershipTrend, error) {
	started := time.Now()
	res, err := s.repomanager.Members(s.db).MembershipTrends(ctx)
	s.opts.observer.ObserveReport(string(ReportMembershipTrends), time.Since(started), err)
	if err != nil {
		return nil, fmt.Errorf("error loading membership trends: %w", err)
	}
	return res, nil
}

// Summary gathers the dashboard headline numbers from the three reports.
func (s *ReportService) Summary(ctx context.Context) (*models.Summary, error) {
	active, err := s.ActiveSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.MonthlyRevenue(ctx)
	if err != nil {
		return nil, err
	}
	trends, err := s.MembershipTrends(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, r := range revenue {
		total = total.Add(r.Revenue)
	}

	return &models.Summary{
		ActiveSubscriptions: len(active),
		TotalRevenue:        total,
		Trends:              trends,
	}, nil
}
