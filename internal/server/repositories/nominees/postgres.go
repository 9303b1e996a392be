package nominees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

const nomineeColumns = `id, user_id, name, email, relationship, access_granted, access_granted_at, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNominee(s scanner) (*models.Nominee, error) {
	n := &models.Nominee{}
	err := s.Scan(&n.ID, &n.UserID, &n.Name, &n.Email, &n.Relationship, &n.AccessGranted, &n.AccessGrantedAt, &n.CreatedAt)
	return n, err
}

func (r *PostgresRepository) Create(ctx context.Context, nominee *models.Nominee) (*models.Nominee, error) {
	query :=
		`INSERT INTO nominees (user_id, name, email, relationship)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, nominee.UserID, nominee.Name, nominee.Email, nominee.Relationship).
		Scan(&nominee.ID, &nominee.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return nominee, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Nominee, error) {
	query := `SELECT ` + nomineeColumns + ` FROM nominees WHERE id = $1`

	n, err := scanNominee(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Nominee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Nominee
	for rows.Next() {
		n, err := scanNominee(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Nominee, error) {
	return r.list(ctx, `SELECT `+nomineeColumns+` FROM nominees WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *PostgresRepository) ListByEmail(ctx context.Context, email string) ([]*models.Nominee, error) {
	return r.list(ctx, `SELECT `+nomineeColumns+` FROM nominees WHERE lower(email) = lower($1) ORDER BY id`, email)
}

func (r *PostgresRepository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nominees WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// GrantAccessForUsers is a single predicate-scoped UPDATE, so overlapping
// sweeps cannot both report the same nominee as newly granted.
func (r *PostgresRepository) GrantAccessForUsers(ctx context.Context, userIDs []int64, at time.Time) ([]*models.Nominee, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query :=
		`UPDATE nominees SET access_granted = TRUE, access_granted_at = $2
		 WHERE user_id = ANY($1) AND access_granted = FALSE
		 RETURNING ` + nomineeColumns

	return r.list(ctx, query, userIDs, at)
}

func (r *PostgresRepository) Grant(ctx context.Context, id int64, at time.Time) error {
	query :=
		`UPDATE nominees SET access_granted = TRUE, access_granted_at = COALESCE(access_granted_at, $2)
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.AffectedAtLeastOne(res)
}
