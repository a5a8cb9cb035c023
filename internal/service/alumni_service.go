package service

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hari13172/alumni-portal-api/internal/models"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
)

type alumniRepository interface {
	ListActive(ctx context.Context) ([]models.Alumni, error)
	FindByID(ctx context.Context, id string) (*models.Alumni, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, alumni *models.Alumni) error
	Update(ctx context.Context, alumni *models.Alumni) error
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
}

type selfieRemover interface {
	Remove(key string) error
}

// ProfileRequest holds the registration form fields. The same set is
// accepted for create and edit.
type ProfileRequest struct {
	Name           string `form:"name" validate:"required"`
	Email          string `form:"email" validate:"required,email"`
	Phone          string `form:"phone" validate:"required,min=7,max=15"`
	GraduationYear string `form:"graduationYear" validate:"required,gradyear"`
	Department     string `form:"department" validate:"required,oneof=MCA MSC DS"`
	Job            string `form:"job" validate:"required"`
}

// ProfileResponse is an alumni profile with its resolved selfie URL.
type ProfileResponse struct {
	models.Alumni
	SelfieURL string `json:"selfieUrl"`
}

// AlumniService handles profile registration, lookup and edits.
type AlumniService struct {
	repo        alumniRepository
	selfies     selfieRemover
	validator   *validator.Validate
	logger      *zap.Logger
	selfieBase  string
	placeholder string
}

// NewAlumniService constructs the alumni service. selfieBase is the URL
// prefix under which stored selfies are served.
func NewAlumniService(repo alumniRepository, selfies selfieRemover, validate *validator.Validate, logger *zap.Logger, selfieBase, placeholder string) *AlumniService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if placeholder == "" {
		placeholder = "/placeholder.svg"
	}
	RegisterProfileValidations(validate)
	return &AlumniService{
		repo:        repo,
		selfies:     selfies,
		validator:   validate,
		logger:      logger,
		selfieBase:  selfieBase,
		placeholder: placeholder,
	}
}

// RegisterProfileValidations adds the graduation-year rule to a validator
// instance. Safe to call more than once.
func RegisterProfileValidations(v *validator.Validate) {
	_ = v.RegisterValidation("gradyear", func(fl validator.FieldLevel) bool {
		year, err := strconv.Atoi(fl.Field().String())
		if err != nil {
			return false
		}
		current := time.Now().Year()
		return year >= current-49 && year <= current
	})
}

// Register creates a new alumni profile. A stored selfie key is mandatory;
// the check happens before any persistence work.
func (s *AlumniService) Register(ctx context.Context, req ProfileRequest, selfieKey string) (*ProfileResponse, error) {
	if selfieKey == "" {
		return nil, appErrors.ErrSelfieRequired
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an alumni with this email is already registered")
	}

	alumni := &models.Alumni{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		GraduationYear: req.GraduationYear,
		Department:     models.Department(req.Department),
		Job:            req.Job,
		SelfieKey:      selfieKey,
	}
	if err := s.repo.Create(ctx, alumni); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}
	return s.toResponse(alumni), nil
}

// Get returns a single profile by ID.
func (s *AlumniService) Get(ctx context.Context, id string) (*ProfileResponse, error) {
	alumni, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return s.toResponse(alumni), nil
}

// Update edits an existing profile. newSelfieKey is optional: when empty
// the stored selfie is retained, otherwise the old image is replaced and
// deleted from storage.
func (s *AlumniService) Update(ctx context.Context, id string, req ProfileRequest, newSelfieKey string) (*ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	alumni, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an alumni with this email is already registered")
	}

	oldSelfie := alumni.SelfieKey
	alumni.Name = req.Name
	alumni.Email = req.Email
	alumni.Phone = req.Phone
	alumni.GraduationYear = req.GraduationYear
	alumni.Department = models.Department(req.Department)
	alumni.Job = req.Job
	if newSelfieKey != "" {
		alumni.SelfieKey = newSelfieKey
	}

	if err := s.repo.Update(ctx, alumni); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	if newSelfieKey != "" && oldSelfie != "" && oldSelfie != newSelfieKey && s.selfies != nil {
		if err := s.selfies.Remove(oldSelfie); err != nil {
			s.logger.Warn("failed to delete replaced selfie", zap.String("key", oldSelfie), zap.Error(err))
		}
	}
	return s.toResponse(alumni), nil
}

// SelfieURL resolves a storage key to a servable URL, or the placeholder
// when no selfie is on record.
func (s *AlumniService) SelfieURL(key string) string {
	if key == "" {
		return s.placeholder
	}
	return s.selfieBase + "/selfie/" + key
}

func (s *AlumniService) toResponse(alumni *models.Alumni) *ProfileResponse {
	return &ProfileResponse{Alumni: *alumni, SelfieURL: s.SelfieURL(alumni.SelfieKey)}
}
