// Package heartbeats stores the append-only check-in audit log.
package heartbeats

import (
	"context"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

// Repository only appends and reads; log entries are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, userID int64, at time.Time, method models.CheckInMethod) (*models.HeartbeatLog, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]*models.HeartbeatLog, error)
}
