// Package folders stores the user's vault folders.
package folders

import (
	"context"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Folder, error)
}
