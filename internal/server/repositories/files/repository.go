// Package files stores metadata for encrypted blobs kept in object storage.
package files

import (
	"context"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	// ListForUser returns the user's files; a nil folderID means all folders.
	ListForUser(ctx context.Context, userID int64, folderID *int64) ([]*models.File, error)
	Count(ctx context.Context) (int64, error)
}
