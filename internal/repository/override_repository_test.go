package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-portal/internal/models"
)

type overrideRepo interface {
	Get(ctx context.Context, assignmentID string) (*models.LocalOverride, error)
	All(ctx context.Context) (map[string]models.LocalOverride, error)
	Put(ctx context.Context, o models.LocalOverride) error
	Delete(ctx context.Context, assignmentID string) error
}

func exerciseOverrideRepo(t *testing.T, repo overrideRepo) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Put(ctx, models.LocalOverride{AssignmentID: "a1", Deadline: "2024-01-15T23:59:59", UpdatedAt: now}))
	require.NoError(t, repo.Put(ctx, models.LocalOverride{AssignmentID: "a2", TeacherName: "Ivanova", UpdatedAt: now}))
	require.NoError(t, repo.Put(ctx, models.LocalOverride{AssignmentID: "a1", Deadline: "2024-01-16T23:59:59", TeacherName: "Petrov", UpdatedAt: now}))

	got, err = repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-16T23:59:59", got.Deadline)
	assert.Equal(t, "Petrov", got.TeacherName)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Ivanova", all["a2"].TeacherName)

	require.NoError(t, repo.Delete(ctx, "a1"))
	require.NoError(t, repo.Delete(ctx, "missing"))
	got, err = repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryOverrideRepository(t *testing.T) {
	exerciseOverrideRepo(t, NewMemoryOverrideRepository())
}

func TestFileOverrideRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	repo := NewFileOverrideRepository(path)
	exerciseOverrideRepo(t, repo)

	reopened := NewFileOverrideRepository(path)
	got, err := reopened.Get(context.Background(), "a2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a2", got.AssignmentID)
}

func TestFileOverrideRepositoryReadsLegacyMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	legacy := `{"a1":{"due_date":"2024-01-15T23:59:59","teacher_name":"Ivanova","updatedAt":"2024-01-10T08:00:00.000Z"}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	got, err := NewFileOverrideRepository(path).Get(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a1", got.AssignmentID)
	assert.Equal(t, "2024-01-15T23:59:59", got.Deadline)
	assert.Equal(t, 2024, got.UpdatedAt.Year())
}

func TestFileOverrideRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := NewFileOverrideRepository(path).All(context.Background())
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`null`), 0o600))
	repo := NewFileOverrideRepository(path)
	all, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	require.NoError(t, repo.Put(context.Background(), models.LocalOverride{AssignmentID: "a1", Deadline: "2024-01-15T23:59:59"}))
	got, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-15T23:59:59", got.Deadline)
}

func newOverrideRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestPostgresOverrideRepositoryGet(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewPostgresOverrideRepository(db)

	rows := sqlmock.NewRows([]string{"assignment_id", "deadline", "teacher_name", "updated_at"}).
		AddRow("a1", "2024-01-15T23:59:59", "", time.Now())
	mock.ExpectQuery("SELECT assignment_id, deadline").WithArgs("a1").WillReturnRows(rows)
	mock.ExpectQuery("SELECT assignment_id, deadline").WithArgs("a2").
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id", "deadline", "teacher_name", "updated_at"}))

	got, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-15T23:59:59", got.Deadline)

	got, err = repo.Get(context.Background(), "a2")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOverrideRepositoryAll(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewPostgresOverrideRepository(db)

	rows := sqlmock.NewRows([]string{"assignment_id", "deadline", "teacher_name", "updated_at"}).
		AddRow("a1", "2024-01-15T23:59:59", "", time.Now()).
		AddRow("a2", "", "Ivanova", time.Now())
	mock.ExpectQuery("SELECT assignment_id, deadline").WillReturnRows(rows)

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Ivanova", all["a2"].TeacherName)
}

func TestPostgresOverrideRepositoryPutAndDelete(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewPostgresOverrideRepository(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS assignment_overrides").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO assignment_overrides").
		WithArgs("a1", "2024-01-15T23:59:59", "Ivanova", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM assignment_overrides").WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.Put(context.Background(), models.LocalOverride{
		AssignmentID: "a1",
		Deadline:     "2024-01-15T23:59:59",
		TeacherName:  "Ivanova",
		UpdatedAt:    time.Now(),
	}))
	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
