package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hari13172/alumni-portal-api/internal/models"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
)

type stubAlumniRepo struct {
	profiles  map[string]*models.Alumni
	createErr error
}

func newStubAlumniRepo() *stubAlumniRepo {
	return &stubAlumniRepo{profiles: make(map[string]*models.Alumni)}
}

func (s *stubAlumniRepo) ListActive(ctx context.Context) ([]models.Alumni, error) {
	out := make([]models.Alumni, 0, len(s.profiles))
	for _, a := range s.profiles {
		if a.DeletedAt == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubAlumniRepo) FindByID(ctx context.Context, id string) (*models.Alumni, error) {
	a, ok := s.profiles[id]
	if !ok || a.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (s *stubAlumniRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	for _, a := range s.profiles {
		if a.DeletedAt == nil && strings.EqualFold(a.Email, email) && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubAlumniRepo) Create(ctx context.Context, alumni *models.Alumni) error {
	if s.createErr != nil {
		return s.createErr
	}
	if alumni.ID == "" {
		alumni.ID = fmt.Sprintf("a%d", len(s.profiles)+1)
	}
	alumni.CreatedAt = time.Now().UTC()
	copied := *alumni
	s.profiles[alumni.ID] = &copied
	return nil
}

func (s *stubAlumniRepo) Update(ctx context.Context, alumni *models.Alumni) error {
	copied := *alumni
	s.profiles[alumni.ID] = &copied
	return nil
}

func (s *stubAlumniRepo) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	a, ok := s.profiles[id]
	if !ok || a.DeletedAt != nil {
		return sql.ErrNoRows
	}
	a.DeletedAt = &deletedAt
	return nil
}

type stubSelfieRemover struct {
	removed []string
}

func (s *stubSelfieRemover) Remove(key string) error {
	s.removed = append(s.removed, key)
	return nil
}

func validProfileRequest() ProfileRequest {
	return ProfileRequest{
		Name:           "Priya Sharma",
		Email:          "priya@example.com",
		Phone:          "9876543210",
		GraduationYear: strconv.Itoa(time.Now().Year() - 2),
		Department:     "MCA",
		Job:            "Software Engineer",
	}
}

func newTestAlumniService(repo *stubAlumniRepo, remover *stubSelfieRemover) *AlumniService {
	return NewAlumniService(repo, remover, nil, zap.NewNop(), "http://localhost:8080", "/placeholder.svg")
}

func TestAlumniServiceRegister(t *testing.T) {
	repo := newStubAlumniRepo()
	svc := newTestAlumniService(repo, &stubSelfieRemover{})

	res, err := svc.Register(context.Background(), validProfileRequest(), "selfie-key")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "http://localhost:8080/selfie/selfie-key", res.SelfieURL)
	assert.Len(t, repo.profiles, 1)
}

func TestAlumniServiceRegisterRequiresSelfie(t *testing.T) {
	repo := newStubAlumniRepo()
	svc := newTestAlumniService(repo, &stubSelfieRemover{})

	_, err := svc.Register(context.Background(), validProfileRequest(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSelfieRequired.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.profiles)
}

func TestAlumniServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newStubAlumniRepo()
	svc := newTestAlumniService(repo, &stubSelfieRemover{})

	_, err := svc.Register(context.Background(), validProfileRequest(), "k1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validProfileRequest(), "k2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// A differently-cased duplicate hits the same conflict, not a failed
	// insert against the lower(email) unique index.
	req := validProfileRequest()
	req.Email = strings.ToUpper(req.Email)
	_, err = svc.Register(context.Background(), req, "k3")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAlumniServiceRegisterValidation(t *testing.T) {
	currentYear := time.Now().Year()
	cases := []struct {
		name   string
		mutate func(*ProfileRequest)
		valid  bool
	}{
		{"current year accepted", func(r *ProfileRequest) { r.GraduationYear = strconv.Itoa(currentYear) }, true},
		{"oldest allowed year accepted", func(r *ProfileRequest) { r.GraduationYear = strconv.Itoa(currentYear - 49) }, true},
		{"future year rejected", func(r *ProfileRequest) { r.GraduationYear = strconv.Itoa(currentYear + 1) }, false},
		{"too old year rejected", func(r *ProfileRequest) { r.GraduationYear = strconv.Itoa(currentYear - 50) }, false},
		{"non-numeric year rejected", func(r *ProfileRequest) { r.GraduationYear = "abcd" }, false},
		{"email without at rejected", func(r *ProfileRequest) { r.Email = "priya.example.com" }, false},
		{"phone of 7 digits accepted", func(r *ProfileRequest) { r.Phone = "1234567" }, true},
		{"phone of 6 digits rejected", func(r *ProfileRequest) { r.Phone = "123456" }, false},
		{"phone of 16 digits rejected", func(r *ProfileRequest) { r.Phone = "1234567890123456" }, false},
		{"unknown department rejected", func(r *ProfileRequest) { r.Department = "MBA" }, false},
		{"empty job rejected", func(r *ProfileRequest) { r.Job = "" }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubAlumniRepo()
			svc := newTestAlumniService(repo, &stubSelfieRemover{})

			req := validProfileRequest()
			tc.mutate(&req)

			_, err := svc.Register(context.Background(), req, "selfie-key")
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
			}
		})
	}
}

func TestAlumniServiceGetNotFound(t *testing.T) {
	svc := newTestAlumniService(newStubAlumniRepo(), &stubSelfieRemover{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAlumniServiceUpdateReplacesSelfie(t *testing.T) {
	repo := newStubAlumniRepo()
	remover := &stubSelfieRemover{}
	svc := newTestAlumniService(repo, remover)

	created, err := svc.Register(context.Background(), validProfileRequest(), "old-key")
	require.NoError(t, err)

	req := validProfileRequest()
	req.Job = "Tech Lead"
	updated, err := svc.Update(context.Background(), created.ID, req, "new-key")
	require.NoError(t, err)
	assert.Equal(t, "Tech Lead", updated.Job)
	assert.Equal(t, "new-key", updated.SelfieKey)
	assert.Equal(t, []string{"old-key"}, remover.removed)
}

func TestAlumniServiceUpdateKeepsSelfieWhenNotReplaced(t *testing.T) {
	repo := newStubAlumniRepo()
	remover := &stubSelfieRemover{}
	svc := newTestAlumniService(repo, remover)

	created, err := svc.Register(context.Background(), validProfileRequest(), "old-key")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, validProfileRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, "old-key", updated.SelfieKey)
	assert.Empty(t, remover.removed)
}

func TestSelfieURLPlaceholder(t *testing.T) {
	svc := newTestAlumniService(newStubAlumniRepo(), &stubSelfieRemover{})
	assert.Equal(t, "/placeholder.svg", svc.SelfieURL(""))
	assert.Equal(t, "http://localhost:8080/selfie/abc", svc.SelfieURL("abc"))
}
