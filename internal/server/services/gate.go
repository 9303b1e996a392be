package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/metrics"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
)

// AccessGate decides whether a nominee may read the owner's vault.
// Access is only ever granted, never revoked.
type AccessGate struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewAccessGate(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *AccessGate {
	return &AccessGate{
		db:          db,
		repomanager: m,
		log:         log.With("module", "gate"),
		now:         time.Now,
	}
}

func (g *AccessGate) IsAccessGranted(ctx context.Context, nomineeID int64) (bool, error) {
	n, err := g.get(ctx, nomineeID)
	if err != nil {
		return false, err
	}
	return n.AccessGranted, nil
}

// Grant is the manual override. Granting an already granted nominee keeps
// the original grant time.
func (g *AccessGate) Grant(ctx context.Context, nomineeID int64) error {
	if err := g.repomanager.Nominees(g.db).Grant(ctx, nomineeID, g.now().UTC()); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("grant nominee access: %w", err)
	}
	metrics.ManualGrant()
	g.log.Info(ctx, "nominee access granted manually", "nominee_id", nomineeID)
	return nil
}

// Authorize returns the nominee when access has been granted and
// common.ErrAccessDenied otherwise.
func (g *AccessGate) Authorize(ctx context.Context, nomineeID int64) (*models.Nominee, error) {
	n, err := g.get(ctx, nomineeID)
	if err != nil {
		return nil, err
	}
	if !n.AccessGranted {
		return nil, common.ErrAccessDenied
	}
	return n, nil
}

// AuthorizeFor is Authorize for a signed-in nominee: the nominee row must
// belong to email, otherwise it is reported as not found.
func (g *AccessGate) AuthorizeFor(ctx context.Context, nomineeID int64, email string) (*models.Nominee, error) {
	n, err := g.get(ctx, nomineeID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(n.Email, email) {
		return nil, common.ErrorNotFound
	}
	if !n.AccessGranted {
		return nil, common.ErrAccessDenied
	}
	return n, nil
}

func (g *AccessGate) get(ctx context.Context, nomineeID int64) (*models.Nominee, error) {
	n, err := g.repomanager.Nominees(g.db).GetByID(ctx, nomineeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("get nominee: %w", err)
	}
	return n, nil
}
