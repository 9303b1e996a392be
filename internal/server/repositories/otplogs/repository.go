// Package otplogs records OTP delivery and verification events for the
// admin dashboard.
package otplogs

import (
	"context"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, mobile, purpose, status string) error
	ListRecent(ctx context.Context, limit int) ([]*models.OTPLog, error)
	Count(ctx context.Context) (int64, error)
}
