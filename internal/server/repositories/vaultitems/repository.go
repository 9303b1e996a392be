// Package vaultitems stores encrypted vault items owned by users.
package vaultitems

import (
	"context"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

// Repository scopes every read and write to the owning user; an item that
// belongs to someone else is reported as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, item *models.VaultItem) (*models.VaultItem, error)
	List(ctx context.Context, userID int64, filter models.VaultItemFilter) ([]*models.VaultItem, error)
	Get(ctx context.Context, id, userID int64) (*models.VaultItem, error)
	Update(ctx context.Context, id, userID int64, title, encryptedData string) (*models.VaultItem, error)
	Delete(ctx context.Context, id, userID int64) error
	CountForUser(ctx context.Context, userID int64) (int, error)
	CountByType(ctx context.Context, userID int64) (map[models.ItemType]int, error)
}
