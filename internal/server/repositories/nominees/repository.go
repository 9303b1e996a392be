// Package nominees stores nominees and the access-granted flag that the
// dead man's switch flips.
package nominees

import (
	"context"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, nominee *models.Nominee) (*models.Nominee, error)
	GetByID(ctx context.Context, id int64) (*models.Nominee, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Nominee, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Nominee, error)
	CountForUser(ctx context.Context, userID int64) (int, error)

	// GrantAccessForUsers sets access_granted for every not yet granted
	// nominee of the given users and returns only the rows it changed.
	// Nominees that already have access are left untouched.
	GrantAccessForUsers(ctx context.Context, userIDs []int64, at time.Time) ([]*models.Nominee, error)

	// Grant sets access_granted for a single nominee. Granting twice is a
	// no-op; an unknown id yields common.ErrorNotFound.
	Grant(ctx context.Context, id int64, at time.Time) error
}
