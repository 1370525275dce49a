package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/subdash/internal/dbx"
	"github.com/dmitrijs2005/subdash/internal/server/models"
	"github.com/dmitrijs2005/subdash/internal/server/repositories/members"
	"github.com/shopspring/decimal"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 14, 30, 0, 0, time.UTC) }
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeMembersRepo keeps members in memory and evaluates the report
// predicates the way the SQL does.
type fakeMembersRepo struct {
	rows   []models.Member
	nextID int64
	err    error

	lastAsOf time.Time
}

func (f *fakeMembersRepo) Create(_ context.Context, m *models.Member) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	row := *m
	row.ID = f.nextID
	if row.MembershipStatus == "" {
		row.MembershipStatus = models.MembershipStatusActive
	}
	f.rows = append(f.rows, row)
	return row.ID, nil
}

func (f *fakeMembersRepo) ListActive(_ context.Context, asOf time.Time) ([]models.Member, error) {
	f.lastAsOf = asOf
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Member, 0)
	for _, m := range f.rows {
		if !m.SubscriptionEnd.Before(asOf) && m.MembershipStatus == models.MembershipStatusActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembersRepo) MonthlyRevenue(context.Context) ([]models.MonthlyRevenue, error) {
	if f.err != nil {
		return nil, f.err
	}
	sums := map[time.Time]decimal.Decimal{}
	for _, m := range f.rows {
		if !m.PaymentStatus {
			continue
		}
		month := date(m.SubscriptionStart.Year(), m.SubscriptionStart.Month(), 1)
		sums[month] = sums[month].Add(m.AmountPaid)
	}
	out := make([]models.MonthlyRevenue, 0, len(sums))
	for k, v := range sums {
		out = append(out, models.MonthlyRevenue{Month: k, Revenue: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

func (f *fakeMembersRepo) MembershipTrends(context.Context) ([]models.MembershipTrend, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := map[string]int64{}
	var order []string
	for _, m := range f.rows {
		if _, ok := counts[m.SubscriptionType]; !ok {
			order = append(order, m.SubscriptionType)
		}
		counts[m.SubscriptionType]++
	}
	out := make([]models.MembershipTrend, 0, len(order))
	for _, k := range order {
		out = append(out, models.MembershipTrend{SubscriptionType: k, Count: counts[k]})
	}
	return out, nil
}

type fakeRepoManager struct {
	members *fakeMembersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Members(dbx.DBTX) members.Repository         { return m.members }

type recordingObserver struct {
	registrations []error
	reports       []string
}

func (r *recordingObserver) ObserveRegistration(err error) {
	r.registrations = append(r.registrations, err)
}

func (r *recordingObserver) ObserveReport(report string, _ time.Duration, _ error) {
	r.reports = append(r.reports, report)
}
