package smartdocs

import (
	"context"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

const docColumns = `id, user_id, file_id, doc_type, doc_number, expiry_date, renewal_date, issuing_authority, notes, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDoc(s scanner) (*models.SmartDoc, error) {
	d := &models.SmartDoc{}
	err := s.Scan(&d.ID, &d.UserID, &d.FileID, &d.DocType, &d.DocNumber, &d.ExpiryDate, &d.RenewalDate,
		&d.IssuingAuthority, &d.Notes, &d.CreatedAt)
	return d, err
}

func (r *PostgresRepository) Create(ctx context.Context, doc *models.SmartDoc) (*models.SmartDoc, error) {
	query :=
		`INSERT INTO smart_docs (user_id, file_id, doc_type, doc_number, expiry_date, renewal_date, issuing_authority, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING ` + docColumns

	d, err := scanDoc(r.db.QueryRowContext(ctx, query, doc.UserID, doc.FileID, doc.DocType, doc.DocNumber,
		doc.ExpiryDate, doc.RenewalDate, doc.IssuingAuthority, doc.Notes))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, upcomingOnly bool, since time.Time) ([]*models.SmartDoc, error) {
	query := `SELECT ` + docColumns + ` FROM smart_docs WHERE user_id = $1`
	args := []any{userID}
	if upcomingOnly {
		query += ` AND expiry_date >= $2 ORDER BY expiry_date ASC`
		args = append(args, since)
	} else {
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.SmartDoc
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM smart_docs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.AffectedAtLeastOne(res)
}

func (r *PostgresRepository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM smart_docs WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
