package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/subdash/internal/common"
	"github.com/dmitrijs2005/subdash/internal/dbx"
	"github.com/dmitrijs2005/subdash/internal/logging"
	"github.com/dmitrijs2005/subdash/internal/server/config"
	"github.com/dmitrijs2005/subdash/internal/server/models"
	"github.com/dmitrijs2005/subdash/internal/server/repositories/members"
	"github.com/dmitrijs2005/subdash/internal/server/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	rows []models.Member
}

func (m *memRepo) Create(_ context.Context, member *models.Member) (int64, error) {
	row := *member
	row.ID = int64(len(m.rows) + 1)
	row.MembershipStatus = models.MembershipStatusActive
	m.rows = append(m.rows, row)
	return row.ID, nil
}

func (m *memRepo) ListActive(_ context.Context, asOf time.Time) ([]models.Member, error) {
	var out []models.Member
	for _, r := range m.rows {
		if !r.SubscriptionEnd.Before(asOf) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) MonthlyRevenue(context.Context) ([]models.MonthlyRevenue, error) {
	if len(m.rows) == 0 {
		return nil, nil
	}
	total := decimal.Zero
	for _, r := range m.rows {
		if r.PaymentStatus {
			total = total.Add(r.AmountPaid)
		}
	}
	s := m.rows[0].SubscriptionStart
	return []models.MonthlyRevenue{{Month: time.Date(s.Year(), s.Month(), 1, 0, 0, 0, 0, time.UTC), Revenue: total}}, nil
}

func (m *memRepo) MembershipTrends(context.Context) ([]models.MembershipTrend, error) {
	counts := map[string]int64{}
	for _, r := range m.rows {
		counts[r.SubscriptionType]++
	}
	var out []models.MembershipTrend
	for k, v := range counts {
		out = append(out, models.MembershipTrend{SubscriptionType: k, Count: v})
	}
	return out, nil
}

type memRepoManager struct {
	repo       *memRepo
	migrated   int
	migrateErr error
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated++
	return m.migrateErr
}

func (m *memRepoManager) Members(dbx.DBTX) members.Repository { return m.repo }

func newTestOpener(rm *memRepoManager, gotCfg **config.Config) Opener {
	return func(_ context.Context, cfg *config.Config) (*Runtime, error) {
		if gotCfg != nil {
			*gotCfg = cfg
		}
		clock := services.WithClock(func() time.Time { return time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC) })
		return &Runtime{
			Config:      cfg,
			Logger:      logging.Discard(),
			RepoManager: rm,
			Services:    services.New(nil, rm, cfg, clock),
		}, nil
	}
}

func run(t *testing.T, rm *memRepoManager, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	cmd := NewRootCmd(newTestOpener(rm, nil))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func registerAlice(t *testing.T, rm *memRepoManager) string {
	t.Helper()
	out, err := run(t, rm, "register", "--name", "Alice", "--email", "alice@example.com",
		"--dob", "1990-01-01", "--type", "Gym", "--months", "1", "--paid", "--amount", "50.00")
	require.NoError(t, err)
	return out
}

func TestMigrate(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	out, err := run(t, rm, "migrate")

	require.NoError(t, err)
	assert.Equal(t, 1, rm.migrated)
	assert.Contains(t, out, "Schema is up to date.")
}

func TestMigrate_Error(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}, migrateErr: errors.Join(common.ErrConnectivity, errors.New("refused"))}
	_, err := run(t, rm, "migrate")

	assert.ErrorIs(t, err, common.ErrConnectivity)
}

func TestRegister(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	out := registerAlice(t, rm)

	assert.Equal(t, "Member 1 registered. Subscription ends on 2024-03-31.\n", out)
	require.Len(t, rm.repo.rows, 1)
	assert.Equal(t, "50.00", rm.repo.rows[0].AmountPaid.StringFixed(2))
}

func TestRegister_NegativeAmount(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	_, err := run(t, rm, "register", "--name", "Bob", "--dob", "1990-01-01", "--amount=-5.00")

	assert.ErrorIs(t, err, common.ErrConstraint)
	assert.Empty(t, rm.repo.rows)
}

func TestRegister_BadDOB(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	_, err := run(t, rm, "register", "--name", "Bob", "--dob", "01/01/1990")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestReport_Table(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	registerAlice(t, rm)

	out, err := run(t, rm, "report", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Total active subscriptions: 1")

	out, err = run(t, rm, "report", "trends")
	require.NoError(t, err)
	assert.Contains(t, out, "Gym")
}

func TestReport_CSV(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	registerAlice(t, rm)

	out, err := run(t, rm, "report", "revenue", "--csv")
	require.NoError(t, err)
	assert.Equal(t, "month,revenue\n2024-03-01,50.00\n", out)
}

func TestReport_Unknown(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	_, err := run(t, rm, "report", "churn")

	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestExport(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	registerAlice(t, rm)

	dir := filepath.Join(t.TempDir(), "csv")
	out, err := run(t, rm, "export", "--dir", dir)
	require.NoError(t, err)

	for _, name := range []string{"active_subscriptions.csv", "monthly_revenue.csv", "membership_trends.csv"} {
		assert.Contains(t, out, name)
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(string(b), "\n"))
	}
}

func TestExport_ArchiveDisabled(t *testing.T) {
	rm := &memRepoManager{repo: &memRepo{}}
	_, err := run(t, rm, "export", "--dir", t.TempDir(), "--archive")

	assert.ErrorIs(t, err, common.ErrorStorageDisabled)
}

func TestDSNOverride(t *testing.T) {
	chdir(t, t.TempDir())
	rm := &memRepoManager{repo: &memRepo{}}

	var cfg *config.Config
	cmd := NewRootCmd(newTestOpener(rm, &cfg))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dsn", "postgres://u:p@db:5432/x", "migrate"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	require.NotNil(t, cfg)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DatabaseDSN)
}

func TestVersion(t *testing.T) {
	out, err := run(t, &memRepoManager{repo: &memRepo{}}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version:")
}

func TestAskPassword(t *testing.T) {
	chdir(t, t.TempDir())
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func() ([]byte, error) { return []byte("s3cr3t"), nil }

	var cfg *config.Config
	cmd := NewRootCmd(newTestOpener(&memRepoManager{repo: &memRepo{}}, &cfg))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dsn", "postgres://admin@db:5432/subscription_db", "--ask-password", "migrate"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, "postgres://admin:s3cr3t@db:5432/subscription_db", cfg.DatabaseDSN)
}

func TestDSNWithPassword_KeywordDSN(t *testing.T) {
	_, err := dsnWithPassword("host=localhost dbname=x", "pw")
	assert.Error(t, err)
}
