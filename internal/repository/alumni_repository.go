package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hari13172/alumni-portal-api/internal/models"
)

// AlumniRepository manages persistence for alumni profiles.
type AlumniRepository struct {
	db *sqlx.DB
}

// NewAlumniRepository constructs an AlumniRepository.
func NewAlumniRepository(db *sqlx.DB) *AlumniRepository {
	return &AlumniRepository{db: db}
}

const alumniColumns = "id, name, email, phone, graduation_year, department, job, selfie_key, created_at, updated_at, deleted_at"

// ListActive returns the full roster of non-deleted alumni, newest first.
// Dashboard filtering happens over this roster in memory.
func (r *AlumniRepository) ListActive(ctx context.Context) ([]models.Alumni, error) {
	query := fmt.Sprintf("SELECT %s FROM alumni WHERE deleted_at IS NULL ORDER BY created_at DESC", alumniColumns)
	var roster []models.Alumni
	if err := r.db.SelectContext(ctx, &roster, query); err != nil {
		return nil, fmt.Errorf("list alumni: %w", err)
	}
	return roster, nil
}

// FindByID fetches a single alumni profile by ID.
func (r *AlumniRepository) FindByID(ctx context.Context, id string) (*models.Alumni, error) {
	query := fmt.Sprintf("SELECT %s FROM alumni WHERE id = $1 AND deleted_at IS NULL", alumniColumns)
	var alumni models.Alumni
	if err := r.db.GetContext(ctx, &alumni, query, id); err != nil {
		return nil, err
	}
	return &alumni, nil
}

// ExistsByEmail checks whether an alumni with the given email exists,
// optionally excluding an ID (for updates). The comparison is
// case-insensitive to match the partial unique index on lower(email).
func (r *AlumniRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM alumni WHERE lower(email) = lower($1) AND deleted_at IS NULL"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// SelfieKeys returns every selfie key referenced by a profile row,
// soft-deleted rows included, so storage cleanup never touches an image
// that is still reachable.
func (r *AlumniRepository) SelfieKeys(ctx context.Context) (map[string]struct{}, error) {
	const query = `SELECT selfie_key FROM alumni WHERE selfie_key <> ''`
	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("list selfie keys: %w", err)
	}
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		out[key] = struct{}{}
	}
	return out, nil
}

// Create inserts a new alumni profile.
func (r *AlumniRepository) Create(ctx context.Context, alumni *models.Alumni) error {
	if alumni.ID == "" {
		alumni.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if alumni.CreatedAt.IsZero() {
		alumni.CreatedAt = now
	}
	alumni.UpdatedAt = now
	const query = `INSERT INTO alumni (id, name, email, phone, graduation_year, department, job, selfie_key, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :graduation_year, :department, :job, :selfie_key, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alumni); err != nil {
		return fmt.Errorf("create alumni: %w", err)
	}
	return nil
}

// Update modifies an existing alumni profile. created_at is never touched.
func (r *AlumniRepository) Update(ctx context.Context, alumni *models.Alumni) error {
	alumni.UpdatedAt = time.Now().UTC()
	const query = `UPDATE alumni SET name = :name, email = :email, phone = :phone, graduation_year = :graduation_year,
        department = :department, job = :job, selfie_key = :selfie_key, updated_at = :updated_at
        WHERE id = :id AND deleted_at IS NULL`
	if _, err := r.db.NamedExecContext(ctx, query, alumni); err != nil {
		return fmt.Errorf("update alumni: %w", err)
	}
	return nil
}

// SoftDelete marks a profile as deleted without dropping the row.
func (r *AlumniRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	const query = `UPDATE alumni SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, deletedAt)
	if err != nil {
		return fmt.Errorf("delete alumni: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
