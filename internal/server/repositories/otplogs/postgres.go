package otplogs

import (
	"context"
	"fmt"

	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, mobile, purpose, status string) error {
	query := `INSERT INTO otp_logs (mobile, purpose, status) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, mobile, purpose, status); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*models.OTPLog, error) {
	query := `SELECT id, mobile, purpose, status, created_at FROM otp_logs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.OTPLog
	for rows.Next() {
		l := &models.OTPLog{}
		if err := rows.Scan(&l.ID, &l.Mobile, &l.Purpose, &l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM otp_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
