package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/subdash/internal/dbx"
	"github.com/dmitrijs2005/subdash/internal/server/repositories/members"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Members(db dbx.DBTX) members.Repository
}
