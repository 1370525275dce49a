// Package cli implements the administrative command line of the
// dashboard: schema setup, member registration, reports and exports.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"

	"github.com/dmitrijs2005/subdash/internal/dbx"
	"github.com/dmitrijs2005/subdash/internal/logging"
	"github.com/dmitrijs2005/subdash/internal/server/config"
	"github.com/dmitrijs2005/subdash/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/subdash/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var readPassword = func() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Database password: ")
	defer fmt.Fprintln(os.Stderr)
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// Runtime is what a command needs once the database is reachable.
type Runtime struct {
	Config      *config.Config
	Logger      logging.Logger
	DB          *sql.DB
	RepoManager repomanager.RepositoryManager
	Services    *services.Services
}

func (r *Runtime) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Opener builds a Runtime from the loaded configuration.
type Opener func(ctx context.Context, cfg *config.Config) (*Runtime, error)

// OpenPostgres is the production Opener.
func OpenPostgres(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := dbx.Open(ctx, cfg.DatabaseDSN, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	return &Runtime{
		Config:      cfg,
		Logger:      logging.New(os.Stderr, cfg.LogLevel, "text"),
		DB:          db,
		RepoManager: rm,
		Services:    services.New(db, rm, cfg),
	}, nil
}

type rootOptions struct {
	configPath  string
	dsn         string
	askPassword bool
}

// NewRootCmd assembles the command tree. Every subcommand opens its own
// Runtime through open and closes it before returning.
func NewRootCmd(open Opener) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "subdash",
		Short:         "Membership subscription dashboard administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to JSON config file")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN (overrides config)")
	root.PersistentFlags().BoolVar(&opts.askPassword, "ask-password", false, "prompt for the database password")

	withRuntime := func(fn func(cmd *cobra.Command, args []string, rt *Runtime) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			rt, err := open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			return fn(cmd, args, rt)
		}
	}

	root.AddCommand(
		newMigrateCmd(withRuntime),
		newRegisterCmd(withRuntime),
		newReportCmd(withRuntime),
		newExportCmd(withRuntime),
		newVersionCmd(),
	)

	return root
}

type runtimeWrapper func(fn func(cmd *cobra.Command, args []string, rt *Runtime) error) func(*cobra.Command, []string) error

func loadConfig(opts *rootOptions) (*config.Config, error) {
	var args []string
	if opts.configPath != "" {
		args = append(args, "-c", opts.configPath)
	}

	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if opts.dsn != "" {
		cfg.DatabaseDSN = opts.dsn
	}

	if opts.askPassword {
		pw, err := readPassword()
		if err != nil {
			return nil, fmt.Errorf("password prompt: %w", err)
		}
		cfg.DatabaseDSN, err = dsnWithPassword(cfg.DatabaseDSN, string(pw))
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// dsnWithPassword replaces the password of a URL-style DSN.
func dsnWithPassword(dsn, password string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("--ask-password needs a URL DSN (postgres://user@host/db)")
	}
	u.User = url.UserPassword(u.User.Username(), password)
	return u.String(), nil
}
