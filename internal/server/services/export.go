package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/subdash/internal/common"
	"github.com/dmitrijs2005/subdash/internal/filex"
	"github.com/dmitrijs2005/subdash/internal/timex"
)

// Report names one of the exportable reports.
type Report string

const (
	ReportActiveSubscriptions Report = "active_subscriptions"
	ReportMonthlyRevenue      Report = "monthly_revenue"
	ReportMembershipTrends    Report = "membership_trends"
)

// Reports lists every exportable report in dashboard order.
var Reports = []Report{ReportActiveSubscriptions, ReportMonthlyRevenue, ReportMembershipTrends}

// ParseReport maps a report name to a Report.
func ParseReport(name string) (Report, error) {
	for _, r := range Reports {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown report %q", common.ErrorNotFound, name)
}

// Filename is the CSV file name of the report export.
func (r Report) Filename() string {
	return string(r) + ".csv"
}

var (
	activeHeader  = []string{"id", "name", "email", "phone", "address", "dob", "subscription_type", "subscription_start", "subscription_end", "payment_status", "amount_paid", "membership_status"}
	revenueHeader = []string{"month", "revenue"}
	trendsHeader  = []string{"subscription_type", "count"}
)

// ExportService renders reports as CSV.
type ExportService struct {
	reports *ReportService
}

func NewExportService(reports *ReportService) *ExportService {
	return &ExportService{reports: reports}
}

// WriteCSV writes the report with a header row to w. The report is fully
// loaded before anything is written, so a query failure leaves w untouched.
func (s *ExportService) WriteCSV(ctx context.Context, report Report, w io.Writer) error {
	records, err := s.records(ctx, report)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("error writing %s: %w", report.Filename(), err)
	}
	return nil
}

// Render returns the CSV export of the report.
func (s *ExportService) Render(ctx context.Context, report Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteCSV(ctx, report, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveAll writes every report into dir, creating it if needed, and returns
// the paths written.
func (s *ExportService) SaveAll(ctx context.Context, dir string) ([]string, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(Reports))
	for _, r := range Reports {
		data, err := s.Render(ctx, r)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(abs, r.Filename())
		if err := filex.WriteFileAtomic(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *ExportService) records(ctx context.Context, report Report) ([][]string, error) {
	switch report {
	case ReportActiveSubscriptions:
		members, err := s.reports.ActiveSubscriptions(ctx)
		if err != nil {
			return nil, err
		}
		out := make([][]string, 0, len(members)+1)
		out = append(out, activeHeader)
		for _, m := range members {
			out = append(out, []string{
				strconv.FormatInt(m.ID, 10),
				m.Name,
				m.Email,
				m.Phone,
				m.Address,
				m.DOB.Format(timex.DateLayout),
				m.SubscriptionType,
				m.SubscriptionStart.Format(timex.DateLayout),
				m.SubscriptionEnd.Format(timex.DateLayout),
				strconv.FormatBool(m.PaymentStatus),
				m.AmountPaid.StringFixed(2),
				m.MembershipStatus,
			})
		}
		return out, nil

	case ReportMonthlyRevenue:
		rows, err := s.reports.MonthlyRevenue(ctx)
		if err != nil {
			return nil, err
		}
		out := make([][]string, 0, len(rows)+1)
		out = append(out, revenueHeader)
		for _, r := range rows {
			out = append(out, []string{r.Month.Format(timex.DateLayout), r.Revenue.StringFixed(2)})
		}
		return out, nil

	case ReportMembershipTrends:
		rows, err := s.reports.MembershipTrends(ctx)
		if err != nil {
			return nil, err
		}
		out := make([][]string, 0, len(rows)+1)
		out = append(out, trendsHeader)
		for _, r := range rows {
			out = append(out, []string{r.SubscriptionType, strconv.FormatInt(r.Count, 10)})
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: unknown report %q", common.ErrorNotFound, report)
}
