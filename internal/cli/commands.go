package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/subdash/internal/buildinfo"
	"github.com/dmitrijs2005/subdash/internal/server/models"
	"github.com/dmitrijs2005/subdash/internal/server/services"
	"github.com/dmitrijs2005/subdash/internal/timex"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newMigrateCmd(with runtimeWrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the members and subscription_plans tables if missing",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, rt *Runtime) error {
			if err := rt.RepoManager.RunMigrations(cmd.Context(), rt.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		}),
	}
}

func newRegisterCmd(with runtimeWrapper) *cobra.Command {
	var (
		in     models.NewMember
		dob    string
		amount string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new member",
		Long: `Register a new member whose subscription starts today.

The subscription ends duration*30 days after today.

Example:
  subdash register --name Alice --email alice@example.com --dob 1990-01-01 \
    --type Gym --months 1 --paid --amount 50.00`,
		Args: cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, rt *Runtime) error {
			d, err := time.Parse(timex.DateLayout, dob)
			if err != nil {
				return fmt.Errorf("invalid --dob format, use YYYY-MM-DD: %w", err)
			}
			a, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount: %w", err)
			}
			in.DOB = d
			in.AmountPaid = a

			reg, err := rt.Services.Members.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			rt.Logger.Debug(cmd.Context(), "member registered", "id", reg.ID)

			fmt.Fprintf(cmd.OutOrStdout(), "Member %d registered. Subscription ends on %s.\n",
				reg.ID, reg.SubscriptionEnd.Format(timex.DateLayout))
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "member name")
	f.StringVar(&in.Email, "email", "", "email")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.Address, "address", "", "postal address")
	f.StringVar(&dob, "dob", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&in.SubscriptionType, "type", "", "subscription type (e.g. Gym, SaaS)")
	f.IntVar(&in.DurationMonths, "months", 1, "subscription duration in months")
	f.BoolVar(&in.PaymentStatus, "paid", false, "payment received")
	f.StringVar(&amount, "amount", "0", "amount paid")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("dob")

	return cmd
}

var reportAliases = map[string]services.Report{
	"active":  services.ReportActiveSubscriptions,
	"revenue": services.ReportMonthlyRevenue,
	"trends":  services.ReportMembershipTrends,
}

func parseReportArg(arg string) (services.Report, error) {
	if r, ok := reportAliases[arg]; ok {
		return r, nil
	}
	return services.ParseReport(arg)
}

func newReportCmd(with runtimeWrapper) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:       "report active|revenue|trends",
		Short:     "Print a dashboard report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"active", "revenue", "trends"},
		RunE: with(func(cmd *cobra.Command, args []string, rt *Runtime) error {
			report, err := parseReportArg(args[0])
			if err != nil {
				return err
			}

			if asCSV {
				return rt.Services.Exports.WriteCSV(cmd.Context(), report, cmd.OutOrStdout())
			}
			return printReport(cmd, rt, report)
		}),
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "print as CSV with a header row")
	return cmd
}

func printReport(cmd *cobra.Command, rt *Runtime, report services.Report) error {
	ctx := cmd.Context()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	switch report {
	case services.ReportActiveSubscriptions:
		rows, err := rt.Services.Reports.ActiveSubscriptions(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tTYPE\tSTART\tEND\tPAID\tAMOUNT")
		for _, m := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%t\t%s\n", m.ID, m.Name, m.Email, m.SubscriptionType,
				m.SubscriptionStart.Format(timex.DateLayout), m.SubscriptionEnd.Format(timex.DateLayout),
				m.PaymentStatus, m.AmountPaid.StringFixed(2))
		}
		fmt.Fprintf(tw, "\nTotal active subscriptions: %d\n", len(rows))

	case services.ReportMonthlyRevenue:
		rows, err := rt.Services.Reports.MonthlyRevenue(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "MONTH\tREVENUE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.Month.Format("2006-01"), r.Revenue.StringFixed(2))
		}

	case services.ReportMembershipTrends:
		rows, err := rt.Services.Reports.MembershipTrends(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "TYPE\tCOUNT")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%d\n", r.SubscriptionType, r.Count)
		}
	}

	return tw.Flush()
}

func newExportCmd(with runtimeWrapper) *cobra.Command {
	var (
		dir     string
		archive bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all reports as CSV files",
		Long: `Write active_subscriptions.csv, monthly_revenue.csv and membership_trends.csv
into the export directory. With --archive the files are also uploaded to the
configured S3 bucket and presigned download links are printed.`,
		Args: cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, rt *Runtime) error {
			if dir == "" {
				dir = rt.Config.ExportDir
			}

			paths, err := rt.Services.Exports.SaveAll(cmd.Context(), dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}

			if !archive {
				return nil
			}

			urls, err := rt.Services.Archive.ArchiveAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range services.Reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Filename(), urls[r])
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&dir, "dir", "", "export directory (default from config)")
	cmd.Flags().BoolVar(&archive, "archive", false, "also upload to the S3 bucket")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
