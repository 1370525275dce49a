package members

import (
	"context"
	"time"

	"github.com/dmitrijs2005/subdash/internal/server/models"
)

// Repository is the storage boundary of the members table.
type Repository interface {
	Create(ctx context.Context, member *models.Member) (int64, error)
	ListActive(ctx context.Context, asOf time.Time) ([]models.Member, error)
	MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error)
	MembershipTrends(ctx context.Context) ([]models.MembershipTrend, error)
}
