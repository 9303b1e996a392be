package repomanager

import (
	"context"
	"database/sql"

	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/files"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/folders"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/heartbeats"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/nominees"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/otplogs"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/refreshtokens"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/smartdocs"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/users"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/vaultitems"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same constructors inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Heartbeats(db dbx.DBTX) heartbeats.Repository
	Nominees(db dbx.DBTX) nominees.Repository
	VaultItems(db dbx.DBTX) vaultitems.Repository
	SmartDocs(db dbx.DBTX) smartdocs.Repository
	Folders(db dbx.DBTX) folders.Repository
	Files(db dbx.DBTX) files.Repository
	OTPLogs(db dbx.DBTX) otplogs.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
