// Package users declares the account and liveness store and its PostgreSQL
// implementation.
package users

import (
	"context"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

type Repository interface {
	// Create inserts a new user with its liveness defaults and fills in
	// ID, LastCheckIn and CreatedAt. A duplicate mobile number yields
	// common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)

	// CheckIn advances last_check_in to at, never backwards.
	CheckIn(ctx context.Context, id int64, at time.Time) error
	UpdateSettings(ctx context.Context, id int64, active bool, frequencyDays int) error
	UpdateProfile(ctx context.Context, id int64, name, email string) error

	// FindLapsed returns every armed user whose deadline is strictly before now.
	FindLapsed(ctx context.Context, now time.Time) ([]models.OverdueUser, error)

	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}
