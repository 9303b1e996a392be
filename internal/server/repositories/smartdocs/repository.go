// Package smartdocs stores document metadata used for renewal reminders.
package smartdocs

import (
	"context"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.SmartDoc) (*models.SmartDoc, error)
	// List returns all documents newest first, or with upcomingOnly the
	// documents expiring after since ordered by expiry date.
	List(ctx context.Context, userID int64, upcomingOnly bool, since time.Time) ([]*models.SmartDoc, error)
	Delete(ctx context.Context, id, userID int64) error
	CountForUser(ctx context.Context, userID int64) (int, error)
}
