package files

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/DATA-DOG/go-sqlmock"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var columns = []string{"id", "user_id", "folder_id", "file_name", "storage_key", "file_size", "mime_type", "encrypted_file_key", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+files\s*\(user_id,.*encrypted_file_key\)\s*VALUES\s*\(\$1,.*\$7\)\s*RETURNING\s+id,\s*created_at$`
	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs(int64(1), nil, "will.pdf", "users/2025/01/01/k", int64(2048), "application/pdf", "efk").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), now))

	got, err := repo.Create(context.Background(), &models.File{
		UserID: 1, FileName: "will.pdf", StorageKey: "users/2025/01/01/k", FileSize: 2048,
		MimeType: "application/pdf", EncryptedFileKey: "efk",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 8 {
		t.Fatalf("unexpected file: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+files`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.File{UserID: 1})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT id, .* FROM files WHERE id = \$1$`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(8), int64(1), int64(2), "a", "k", int64(1), "m", "e", now))
	mock.ExpectQuery(q).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), 8)
	if err != nil || got.StorageKey != "k" || got.FolderID == nil || *got.FolderID != 2 {
		t.Fatalf("unexpected result: %+v, %v", got, err)
	}
	if _, err := repo.GetByID(context.Background(), 9); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestListForUser(t *testing.T) {
	now := time.Now()
	folder := int64(2)

	t.Run("all folders", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectQuery(`FROM files WHERE user_id = \$1 ORDER BY created_at DESC$`).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(8), int64(1), nil, "a", "k", int64(1), "m", "e", now))

		got, err := repo.ListForUser(context.Background(), 1, nil)
		if err != nil || len(got) != 1 || got[0].FolderID != nil {
			t.Fatalf("unexpected result: %+v, %v", got, err)
		}
	})

	t.Run("one folder", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectQuery(`FROM files WHERE user_id = \$1 AND folder_id = \$2 ORDER BY`).WithArgs(int64(1), int64(2)).
			WillReturnRows(sqlmock.NewRows(columns))

		got, err := repo.ListForUser(context.Background(), 1, &folder)
		if err != nil || len(got) != 0 {
			t.Fatalf("unexpected result: %+v, %v", got, err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectQuery(`FROM files`).WillReturnError(errors.New("boom"))

		if _, err := repo.ListForUser(context.Background(), 1, nil); err == nil {
			t.Fatal("expected error")
		}
	})
}
