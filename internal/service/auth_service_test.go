package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hari13172/alumni-portal-api/internal/models"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
)

type mockAdminRepo struct {
	admin            *models.AdminUser
	findByUserErr    error
	refreshTokens    map[string]*models.RefreshToken
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	if m.findByUserErr != nil {
		return nil, m.findByUserErr
	}
	if m.admin == nil || m.admin.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.admin, nil
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	if m.admin == nil || m.admin.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.admin, nil
}

func (m *mockAdminRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAdminRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAdminRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAdminRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAdminRepo) RevokeAdminRefreshTokens(ctx context.Context, adminID string) error {
	for _, token := range m.refreshTokens {
		if token.AdminID == adminID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockAdminRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "alumni-portal-api",
	}
}

func activeAdmin(t *testing.T) *models.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &models.AdminUser{ID: "adm1", Username: "registrar", FullName: "Registrar", PasswordHash: string(hash), Active: true}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAdminRepo{admin: activeAdmin(t)}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "registrar", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "adm1", res.Admin.ID)
	assert.True(t, repo.lastLoginUpdated)
	assert.NotEmpty(t, repo.refreshTokens)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAdminRepo{admin: activeAdmin(t)}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "registrar", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownUsername(t *testing.T) {
	repo := &mockAdminRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	admin := activeAdmin(t)
	admin.Active = false
	repo := &mockAdminRepo{admin: admin}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "registrar", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	repo := &mockAdminRepo{admin: activeAdmin(t), refreshTokens: map[string]*models.RefreshToken{
		"old": {ID: "rt1", AdminID: "adm1", Token: "old", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, "old", res.RefreshToken)
	assert.True(t, repo.refreshTokens["old"].Revoked)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	repo := &mockAdminRepo{admin: activeAdmin(t), refreshTokens: map[string]*models.RefreshToken{
		"stale": {ID: "rt1", AdminID: "adm1", Token: "stale", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	repo := &mockAdminRepo{admin: activeAdmin(t), refreshTokens: map[string]*models.RefreshToken{
		"session": {ID: "rt1", AdminID: "adm1", Token: "session", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.Logout(context.Background(), "session", "adm1", models.LoginRequest{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.True(t, repo.refreshTokens["session"].Revoked)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogout, repo.auditLogs[0].Action)
}

func TestAuthServiceLogoutForeignToken(t *testing.T) {
	repo := &mockAdminRepo{admin: activeAdmin(t), refreshTokens: map[string]*models.RefreshToken{
		"session": {ID: "rt1", AdminID: "other", Token: "session", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.Logout(context.Background(), "session", "adm1", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.refreshTokens["session"].Revoked)
}

func TestValidateToken(t *testing.T) {
	repo := &mockAdminRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())
	admin := &models.AdminUser{ID: "adm1", Username: "registrar", FullName: "Registrar"}

	token, err := svc.generateAccessToken(admin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "adm1", claims.AdminID)
	assert.Equal(t, "registrar", claims.Username)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
