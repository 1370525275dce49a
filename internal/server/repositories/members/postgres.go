// Package members holds the PostgreSQL queries behind member registration
// and the three dashboard reports.
package members

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/subdash/internal/dbx"
	"github.com/dmitrijs2005/subdash/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts member and returns the server-assigned id.
// membership_status is left to the column default.
func (r *PostgresRepository) Create(ctx context.Context, member *models.Member) (int64, error) {

	query :=
		`INSERT INTO members (name, email, phone, address, dob, subscription_type,
		     subscription_start, subscription_end, payment_status, amount_paid)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		member.Name, member.Email, member.Phone, member.Address, member.DOB, member.SubscriptionType,
		member.SubscriptionStart, member.SubscriptionEnd, member.PaymentStatus, member.AmountPaid,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	return id, nil
}

// ListActive returns members whose subscription has not ended by asOf and
// whose stored status is still active.
func (r *PostgresRepository) ListActive(ctx context.Context, asOf time.Time) ([]models.Member, error) {

	query :=
		`SELECT id, name, email, phone, address, dob, subscription_type, subscription_start,
		        subscription_end, payment_status, amount_paid, membership_status
		 FROM members
		 WHERE subscription_end >= $1 AND membership_status = $2
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, asOf, models.MembershipStatusActive)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.Member, 0)
	for rows.Next() {
		var m models.Member
		err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.DOB, &m.SubscriptionType,
			&m.SubscriptionStart, &m.SubscriptionEnd, &m.PaymentStatus, &m.AmountPaid, &m.MembershipStatus)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	return result, nil
}

// MonthlyRevenue sums paid amounts per calendar month of subscription_start,
// oldest month first. Months without paid members are absent.
func (r *PostgresRepository) MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {

	query :=
		`SELECT DATE_TRUNC('month', subscription_start)::date AS month, SUM(amount_paid) AS revenue
		 FROM members
		 WHERE payment_status = TRUE
		 GROUP BY month
		 ORDER BY month
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.MonthlyRevenue, 0)
	for rows.Next() {
		var m models.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Revenue); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	return result, nil
}

// MembershipTrends counts all members per subscription type.
func (r *PostgresRepository) MembershipTrends(ctx context.Context) ([]models.MembershipTrend, error) {

	query :=
		`SELECT subscription_type, COUNT(*) AS count
		 FROM members
		 GROUP BY subscription_type
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.MembershipTrend, 0)
	for rows.Next() {
		var (
			subscriptionType sql.NullString
			t                models.MembershipTrend
		)
		if err := rows.Scan(&subscriptionType, &t.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		t.SubscriptionType = subscriptionType.String
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	return result, nil
}
