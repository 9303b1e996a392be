package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (mobile_number, name, email, public_key, encrypted_private_key, check_in_frequency_days, dead_mans_switch_active)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, last_check_in, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.MobileNumber, user.Name, user.Email, user.PublicKey, user.EncryptedPrivateKey,
		user.CheckInFrequencyDays, user.SwitchActive).Scan(&user.ID, &user.LastCheckIn, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const selectUser = `SELECT id, mobile_number, name, email, public_key, encrypted_private_key,
		last_check_in, check_in_frequency_days, dead_mans_switch_active, created_at
		FROM users`

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.MobileNumber, &u.Name, &u.Email, &u.PublicKey, &u.EncryptedPrivateKey,
		&u.LastCheckIn, &u.CheckInFrequencyDays, &u.SwitchActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+` WHERE mobile_number = $1`, mobile))
}

// CheckIn uses GREATEST so concurrent check-ins commute and a stale clock
// cannot move the timestamp backwards.
func (r *PostgresRepository) CheckIn(ctx context.Context, id int64, at time.Time) error {
	query :=
		`UPDATE users SET last_check_in = GREATEST(last_check_in, $2)
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.AffectedAtLeastOne(res)
}

func (r *PostgresRepository) UpdateSettings(ctx context.Context, id int64, active bool, frequencyDays int) error {
	query :=
		`UPDATE users SET dead_mans_switch_active = $2, check_in_frequency_days = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, active, frequencyDays)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.AffectedAtLeastOne(res)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	query :=
		`UPDATE users SET name = $2, email = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, name, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.AffectedAtLeastOne(res)
}

func (r *PostgresRepository) FindLapsed(ctx context.Context, now time.Time) ([]models.OverdueUser, error) {
	query :=
		`SELECT id, name, email FROM users
		 WHERE dead_mans_switch_active = TRUE
		 AND last_check_in + (check_in_frequency_days * INTERVAL '24 hours') < $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.OverdueUser
	for rows.Next() {
		var u models.OverdueUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query :=
		`SELECT id, mobile_number, name, email, created_at FROM users
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.MobileNumber, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
