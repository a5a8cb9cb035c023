package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hari13172/alumni-portal-api/internal/models"
)

// AdminUserRepository manages admin accounts, their refresh tokens and
// the audit trail.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository constructs an AdminUserRepository.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// FindByUsername fetches an admin account by username.
func (r *AdminUserRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	const query = `SELECT id, username, password_hash, full_name, active, last_login, created_at, updated_at
        FROM admin_users WHERE username = $1`
	var admin models.AdminUser
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID fetches an admin account by ID.
func (r *AdminUserRepository) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	const query = `SELECT id, username, password_hash, full_name, active, last_login, created_at, updated_at
        FROM admin_users WHERE id = $1`
	var admin models.AdminUser
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// UpdateLastLogin stamps the most recent successful login.
func (r *AdminUserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE admin_users SET last_login = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a new refresh token session.
func (r *AdminUserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	const query = `INSERT INTO refresh_tokens (id, admin_id, token, expires_at, created_at, revoked, ip_address, user_agent)
        VALUES (:id, :admin_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken looks up a refresh token by its value.
func (r *AdminUserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, admin_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
        FROM refresh_tokens WHERE token = $1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// RevokeRefreshToken marks a single token as revoked.
func (r *AdminUserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAdminRefreshTokens revokes every live token for an admin.
func (r *AdminUserRepository) RevokeAdminRefreshTokens(ctx context.Context, adminID string) error {
	const query = `UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE admin_id = $1 AND revoked = false`
	if _, err := r.db.ExecContext(ctx, query, adminID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke admin refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog records an admin action.
func (r *AdminUserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, admin_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at)
        VALUES (:id, :admin_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
