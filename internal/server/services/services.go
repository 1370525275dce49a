package services

import (
	"database/sql"

	sc "github.com/dmitrijs2005/subdash/internal/server/config"
	"github.com/dmitrijs2005/subdash/internal/server/repositories/repomanager"
)

// Services bundles the dashboard services over one connection pool.
type Services struct {
	Members *MembershipService
	Reports *ReportService
	Exports *ExportService
	Archive *ArchiveService
}

func New(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, opts ...Option) *Services {
	reports := NewReportService(db, m, opts...)
	exports := NewExportService(reports)

	return &Services{
		Members: NewMembershipService(db, m, opts...),
		Reports: reports,
		Exports: exports,
		Archive: NewArchiveService(exports, config),
	}
}
