package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/hari13172/alumni-portal-api/internal/models"
)

func newAlumniRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func alumniRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "phone", "graduation_year", "department", "job", "selfie_key", "created_at", "updated_at", "deleted_at"})
}

func TestAlumniRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()

	repo := NewAlumniRepository(db)
	rows := alumniRows().
		AddRow("a1", "Priya", "priya@example.com", "9876543210", "2023", "MCA", "Engineer", "key1", time.Now(), time.Now(), nil).
		AddRow("a2", "Rahul", "rahul@example.com", "9123456780", "2021", "DS", "Analyst", "", time.Now(), time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, graduation_year, department, job, selfie_key, created_at, updated_at, deleted_at FROM alumni WHERE deleted_at IS NULL")).
		WillReturnRows(rows)

	roster, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, "a1", roster[0].ID)
	require.Equal(t, models.DepartmentDS, roster[1].Department)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()

	repo := NewAlumniRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alumni")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	alumni := &models.Alumni{
		Name:           "Priya",
		Email:          "priya@example.com",
		Phone:          "9876543210",
		GraduationYear: "2023",
		Department:     models.DepartmentMCA,
		Job:            "Engineer",
		SelfieKey:      "key1",
	}
	require.NoError(t, repo.Create(context.Background(), alumni))
	require.NotEmpty(t, alumni.ID)
	require.False(t, alumni.CreatedAt.IsZero())

	rows := alumniRows().
		AddRow(alumni.ID, "Priya", "priya@example.com", "9876543210", "2023", "MCA", "Engineer", "key1", alumni.CreatedAt, alumni.UpdatedAt, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, graduation_year")).
		WithArgs(alumni.ID).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), alumni.ID)
	require.NoError(t, err)
	require.Equal(t, alumni.Email, found.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()

	// The comparison folds case on both sides, matching the partial
	// unique index on lower(email).
	repo := NewAlumniRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM alumni WHERE lower(email) = lower($1) AND deleted_at IS NULL LIMIT 1")).
		WithArgs("Priya@Example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "Priya@Example.com", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM alumni WHERE lower(email) = lower($1) AND deleted_at IS NULL AND id <> $2 LIMIT 1")).
		WithArgs("priya@example.com", "a1").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByEmail(context.Background(), "priya@example.com", "a1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRepositorySelfieKeys(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()

	repo := NewAlumniRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT selfie_key FROM alumni WHERE selfie_key <> ''")).
		WillReturnRows(sqlmock.NewRows([]string{"selfie_key"}).AddRow("key1").AddRow("key3"))

	keys, err := repo.SelfieKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.Contains(t, keys, "key1")
	require.Contains(t, keys, "key3")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()

	repo := NewAlumniRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE alumni SET name")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created := time.Now().Add(-time.Hour)
	alumni := &models.Alumni{ID: "a1", Name: "Priya", Email: "priya@example.com", CreatedAt: created}
	require.NoError(t, repo.Update(context.Background(), alumni))
	require.Equal(t, created, alumni.CreatedAt)
	require.True(t, alumni.UpdatedAt.After(created))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRepositorySoftDelete(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()

	repo := NewAlumniRepository(db)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE alumni SET deleted_at = $2")).
		WithArgs("a1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(context.Background(), "a1", now))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE alumni SET deleted_at = $2")).
		WithArgs("missing", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.SoftDelete(context.Background(), "missing", now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
