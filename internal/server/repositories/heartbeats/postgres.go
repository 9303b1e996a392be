package heartbeats

import (
	"context"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, at time.Time, method models.CheckInMethod) (*models.HeartbeatLog, error) {
	query :=
		`INSERT INTO heartbeat_logs (user_id, checked_in_at, method)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	entry := &models.HeartbeatLog{UserID: userID, CheckedInAt: at, Method: method}
	if err := r.db.QueryRowContext(ctx, query, userID, at, string(method)).Scan(&entry.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// ListForUser returns the newest entries first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]*models.HeartbeatLog, error) {
	query :=
		`SELECT id, user_id, checked_in_at, method FROM heartbeat_logs
		 WHERE user_id = $1
		 ORDER BY checked_in_at DESC, id DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.HeartbeatLog
	for rows.Next() {
		e := &models.HeartbeatLog{}
		var method string
		if err := rows.Scan(&e.ID, &e.UserID, &e.CheckedInAt, &method); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.Method = models.CheckInMethod(method)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
