// Package services contains server-side business logic. This file implements
// LivenessService, the ledger of user check-ins that arms and resets the dead
// man's switch.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/metrics"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
)

const defaultHistoryLimit = 20

type LivenessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewLivenessService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *LivenessService {
	return &LivenessService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "liveness"),
		now:         time.Now,
	}
}

// CheckIn records proof of life for userID. last_check_in only moves forward
// and every call appends a heartbeat log entry in the same transaction.
func (s *LivenessService) CheckIn(ctx context.Context, userID int64, method string) (*models.LivenessStatus, error) {
	m := models.NormalizeCheckInMethod(method)
	now := s.now().UTC()

	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		if err := users.CheckIn(ctx, userID, now); err != nil {
			return err
		}
		if _, err := s.repomanager.Heartbeats(tx).Create(ctx, userID, now, m); err != nil {
			return err
		}
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "check-in failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("check-in: %w", err)
	}

	metrics.CheckIn(string(m))
	s.log.Info(ctx, "check-in recorded", "user_id", userID, "method", m)

	return models.StatusOf(user, now), nil
}

// UpdateSettings arms or disarms the switch and sets the check-in frequency.
// A non-positive frequency is rejected before anything is written.
func (s *LivenessService) UpdateSettings(ctx context.Context, userID int64, active bool, frequencyDays int) (*models.LivenessStatus, error) {
	if frequencyDays <= 0 {
		return nil, fmt.Errorf("%w: check-in frequency must be positive", common.ErrInvalidArgument)
	}

	users := s.repomanager.Users(s.db)
	if err := users.UpdateSettings(ctx, userID, active, frequencyDays); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("update settings: %w", err)
	}

	s.log.Info(ctx, "switch settings updated", "user_id", userID, "active", active, "frequency_days", frequencyDays)

	return s.GetStatus(ctx, userID)
}

func (s *LivenessService) GetStatus(ctx context.Context, userID int64) (*models.LivenessStatus, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("get status: %w", err)
	}
	return models.StatusOf(u, s.now().UTC()), nil
}

// History returns the latest heartbeat log entries, newest first.
func (s *LivenessService) History(ctx context.Context, userID int64, limit int) ([]*models.HeartbeatLog, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultHistoryLimit
	}
	logs, err := s.repomanager.Heartbeats(s.db).ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("heartbeat history: %w", err)
	}
	return logs, nil
}
