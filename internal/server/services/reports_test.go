package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/subdash/internal/common"
	"github.com/dmitrijs2005/subdash/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	day time.Time
	in  models.NewMember
}

// seed registers members through the registrar on the given days.
func seed(t *testing.T, repo *fakeMembersRepo, regs ...registration) {
	t.Helper()
	for _, r := range regs {
		day := r.day
		svc := NewMembershipService(nil, &fakeRepoManager{members: repo},
			WithClock(func() time.Time { return day }))
		_, err := svc.Register(context.Background(), r.in)
		require.NoError(t, err)
	}
}

func TestReportService_ActiveSubscriptions_DependsOnToday(t *testing.T) {
	repo := &fakeMembersRepo{}
	seed(t, repo, registration{date(2024, time.March, 1), newMember("Gym", 1, true, "50.00")})

	tests := []struct {
		name  string
		today func() time.Time
		want  int
	}{
		{"mid period", fixedClock(2024, time.March, 15), 1},
		{"last day", fixedClock(2024, time.March, 31), 1},
		{"after end", fixedClock(2024, time.April, 15), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewReportService(nil, &fakeRepoManager{members: repo}, WithClock(tt.today))
			got, err := svc.ActiveSubscriptions(context.Background())
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			assert.Equal(t, 0, repo.lastAsOf.Hour())
		})
	}
}

func TestReportService_ActiveSubscriptions_SkipsInactiveStatus(t *testing.T) {
	repo := &fakeMembersRepo{rows: []models.Member{
		{ID: 1, SubscriptionEnd: date(2030, time.January, 1), MembershipStatus: "cancelled"},
		{ID: 2, SubscriptionEnd: date(2030, time.January, 1), MembershipStatus: models.MembershipStatusActive},
	}}
	svc := NewReportService(nil, &fakeRepoManager{members: repo}, WithClock(fixedClock(2024, time.March, 1)))

	got, err := svc.ActiveSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestReportService_MonthlyRevenue(t *testing.T) {
	repo := &fakeMembersRepo{}
	seed(t, repo,
		registration{date(2024, time.March, 1), newMember("Gym", 1, true, "50.00")},
		registration{date(2024, time.March, 20), newMember("Gym", 3, true, "120.50")},
		registration{date(2024, time.March, 21), newMember("Gym", 1, false, "999.00")},
		registration{date(2024, time.May, 2), newMember("SaaS", 12, true, "10.00")},
	)

	svc := NewReportService(nil, &fakeRepoManager{members: repo})
	got, err := svc.MonthlyRevenue(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2, "unpaid rows excluded and empty months not filled")
	assert.Equal(t, date(2024, time.March, 1), got[0].Month)
	assert.Equal(t, "170.50", got[0].Revenue.StringFixed(2))
	assert.Equal(t, date(2024, time.May, 1), got[1].Month)
	assert.Equal(t, "10.00", got[1].Revenue.StringFixed(2))
}

func TestReportService_MonthlyRevenue_NoPaidMembers(t *testing.T) {
	repo := &fakeMembersRepo{}
	seed(t, repo, registration{date(2024, time.March, 1), newMember("Gym", 1, false, "50.00")})

	svc := NewReportService(nil, &fakeRepoManager{members: repo})
	got, err := svc.MonthlyRevenue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReportService_MembershipTrends(t *testing.T) {
	repo := &fakeMembersRepo{}
	seed(t, repo,
		registration{date(2024, time.March, 1), newMember("Gym", 1, true, "50.00")},
		registration{date(2024, time.March, 1), newMember("Gym", 1, true, "50.00")},
		registration{date(2024, time.March, 1), newMember("SaaS", 1, true, "50.00")},
	)

	svc := NewReportService(nil, &fakeRepoManager{members: repo})
	got, err := svc.MembershipTrends(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []models.MembershipTrend{
		{SubscriptionType: "Gym", Count: 2},
		{SubscriptionType: "SaaS", Count: 1},
	}, got)
}

func TestReportService_Summary(t *testing.T) {
	repo := &fakeMembersRepo{}
	seed(t, repo,
		registration{date(2024, time.March, 1), newMember("Gym", 1, true, "50.00")},
		registration{date(2024, time.April, 1), newMember("SaaS", 6, true, "25.25")},
		registration{date(2024, time.April, 2), newMember("Gym", 6, false, "100.00")},
	)

	obs := &recordingObserver{}
	svc := NewReportService(nil, &fakeRepoManager{members: repo},
		WithClock(fixedClock(2024, time.April, 15)), WithObserver(obs))

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.ActiveSubscriptions)
	assert.True(t, sum.TotalRevenue.Equal(decimal.RequireFromString("75.25")))
	assert.Len(t, sum.Trends, 2)
	assert.Equal(t, []string{"active_subscriptions", "monthly_revenue", "membership_trends"}, obs.reports)
}

func TestReportService_PropagatesQueryError(t *testing.T) {
	repo := &fakeMembersRepo{err: common.ErrQuery}
	svc := NewReportService(nil, &fakeRepoManager{members: repo})

	_, err := svc.ActiveSubscriptions(context.Background())
	assert.ErrorIs(t, err, common.ErrQuery)

	_, err = svc.MonthlyRevenue(context.Background())
	assert.ErrorIs(t, err, common.ErrQuery)

	_, err = svc.MembershipTrends(context.Background())
	assert.ErrorIs(t, err, common.ErrQuery)

	_, err = svc.Summary(context.Background())
	assert.ErrorIs(t, err, common.ErrQuery)
}
