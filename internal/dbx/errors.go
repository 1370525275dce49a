package dbx

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dmitrijs2005/subdash/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// Classify wraps err with the storage sentinel it belongs to:
// common.ErrConnectivity, common.ErrConstraint or common.ErrQuery.
// Errors that fit none of them, and errors already classified, are
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrConnectivity) ||
		errors.Is(err, common.ErrConstraint) ||
		errors.Is(err, common.ErrQuery) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if sentinel := classifySQLState(pgErr.Code); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", common.ErrConnectivity, err)
	}

	return err
}

// classifySQLState maps a PostgreSQL SQLSTATE to a sentinel, or nil.
func classifySQLState(code string) error {
	switch {
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
		// connection exception, operator intervention (admin shutdown etc.)
		return common.ErrConnectivity
	case strings.HasPrefix(code, "22"), strings.HasPrefix(code, "23"):
		return common.ErrConstraint
	case strings.HasPrefix(code, "42"):
		return common.ErrQuery
	}
	return nil
}
