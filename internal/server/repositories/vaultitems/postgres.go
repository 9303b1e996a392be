package vaultitems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

const itemColumns = `id, user_id, folder_id, item_type, title, encrypted_data, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.VaultItem, error) {
	item := &models.VaultItem{}
	var itemType string
	err := s.Scan(&item.ID, &item.UserID, &item.FolderID, &itemType, &item.Title, &item.EncryptedData, &item.CreatedAt, &item.UpdatedAt)
	item.ItemType = models.ItemType(itemType)
	return item, err
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.VaultItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.VaultItem) (*models.VaultItem, error) {
	query :=
		`INSERT INTO vault_items (user_id, folder_id, item_type, title, encrypted_data)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + itemColumns

	return r.one(ctx, query, item.UserID, item.FolderID, string(item.ItemType), item.Title, item.EncryptedData)
}

// List returns the user's items, newest first, optionally narrowed by folder
// and type.
func (r *PostgresRepository) List(ctx context.Context, userID int64, filter models.VaultItemFilter) ([]*models.VaultItem, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + itemColumns + ` FROM vault_items WHERE user_id = $1`)
	args := []any{userID}

	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		fmt.Fprintf(&sb, ` AND folder_id = $%d`, len(args))
	}
	if filter.ItemType != "" {
		args = append(args, string(filter.ItemType))
		fmt.Fprintf(&sb, ` AND item_type = $%d`, len(args))
	}
	sb.WriteString(` ORDER BY created_at DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.VaultItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, userID int64) (*models.VaultItem, error) {
	return r.one(ctx, `SELECT `+itemColumns+` FROM vault_items WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) Update(ctx context.Context, id, userID int64, title, encryptedData string) (*models.VaultItem, error) {
	query :=
		`UPDATE vault_items SET title = $1, encrypted_data = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 AND user_id = $4
		 RETURNING ` + itemColumns

	return r.one(ctx, query, title, encryptedData, id, userID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vault_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.AffectedAtLeastOne(res)
}

func (r *PostgresRepository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vault_items WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountByType always reports every known type, with zero for unused ones.
func (r *PostgresRepository) CountByType(ctx context.Context, userID int64) (map[models.ItemType]int, error) {
	query :=
		`SELECT item_type, COUNT(*) FROM vault_items
		 WHERE user_id = $1
		 GROUP BY item_type
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	stats := make(map[models.ItemType]int, len(models.ItemTypes))
	for _, t := range models.ItemTypes {
		stats[t] = 0
	}
	for rows.Next() {
		var (
			itemType string
			n        int
		)
		if err := rows.Scan(&itemType, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if t := models.ItemType(itemType); t.Valid() {
			stats[t] = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stats, nil
}
