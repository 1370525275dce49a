package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/subdash/internal/common"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// ConnParams are the discrete settings of a PostgreSQL connection.
type ConnParams struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN renders p as a postgres:// URL understood by pgx.
func (p ConnParams) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.Database,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	if p.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", p.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Open creates a PostgreSQL pool for dsn and verifies it with a ping.
// maxOpen <= 0 leaves the pool unbounded.
func Open(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error) {
	return OpenDriver(ctx, DriverName, dsn, maxOpen)
}

// OpenDriver is Open for an arbitrary registered driver. A failed ping is
// reported as common.ErrConnectivity and the pool is closed.
func OpenDriver(ctx context.Context, driver, dsn string, maxOpen int) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrConnectivity, err)
	}

	return db, nil
}
