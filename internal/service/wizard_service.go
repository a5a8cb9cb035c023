package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hari13172/alumni-portal-api/internal/dto"
	"github.com/hari13172/alumni-portal-api/internal/models"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
)

type draftStore interface {
	Get(ctx context.Context, id string) (*models.Draft, error)
	Save(ctx context.Context, draft *models.Draft) error
	Delete(ctx context.Context, id string) error
}

type selfieProcessor interface {
	Store(data []byte) (string, error)
	Remove(key string) error
}

type profileRegistrar interface {
	Register(ctx context.Context, req ProfileRequest, selfieKey string) (*ProfileResponse, error)
}

// WizardService sequences the registration flow. Every operation loads
// the draft, checks the requested transition against the step machine,
// and persists the advanced draft.
type WizardService struct {
	drafts    draftStore
	selfies   selfieProcessor
	registrar profileRegistrar
	logger    *zap.Logger
}

// NewWizardService constructs the wizard service.
func NewWizardService(drafts draftStore, selfies selfieProcessor, registrar profileRegistrar, logger *zap.Logger) *WizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardService{drafts: drafts, selfies: selfies, registrar: registrar, logger: logger}
}

// Start creates a fresh draft at the intro step.
func (s *WizardService) Start(ctx context.Context) (*dto.DraftState, error) {
	now := time.Now().UTC()
	draft := &models.Draft{
		ID:        uuid.NewString(),
		Step:      models.StepVideo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create draft")
	}
	return draftState(draft), nil
}

// Get returns the current wizard state for a draft.
func (s *WizardService) Get(ctx context.Context, id string) (*dto.DraftState, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return draftState(draft), nil
}

// CompleteIntro advances past the intro video. Covers both natural
// playback end and an explicit skip.
func (s *WizardService) CompleteIntro(ctx context.Context, id string) (*dto.DraftState, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(draft, models.StepSelfie); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return draftState(draft), nil
}

// AttachSelfie stores the captured frame on the draft and moves to the
// form step. A previously captured selfie is replaced and its image
// removed from storage.
func (s *WizardService) AttachSelfie(ctx context.Context, id string, frame []byte) (*dto.DraftState, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Step != models.StepSelfie {
		return nil, invalidTransition(draft.Step, models.StepForm)
	}

	key, err := s.selfies.Store(frame)
	if err != nil {
		return nil, err
	}
	if draft.SelfieKey != "" {
		if removeErr := s.selfies.Remove(draft.SelfieKey); removeErr != nil {
			s.logger.Warn("failed to remove replaced draft selfie", zap.String("key", draft.SelfieKey), zap.Error(removeErr))
		}
	}
	draft.SelfieKey = key
	draft.Step = models.StepForm
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return draftState(draft), nil
}

// RetakeSelfie discards the captured selfie and steps back to capture.
func (s *WizardService) RetakeSelfie(ctx context.Context, id string) (*dto.DraftState, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Step != models.StepForm && draft.Step != models.StepSelfie {
		return nil, invalidTransition(draft.Step, models.StepSelfie)
	}
	if draft.SelfieKey != "" {
		if err := s.selfies.Remove(draft.SelfieKey); err != nil {
			s.logger.Warn("failed to remove retaken selfie", zap.String("key", draft.SelfieKey), zap.Error(err))
		}
		draft.SelfieKey = ""
	}
	draft.Step = models.StepSelfie
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return draftState(draft), nil
}

// UpdateForm merges partial field input into the draft. Values typed so
// far survive later merges that omit them.
func (s *WizardService) UpdateForm(ctx context.Context, id string, update models.DraftForm) (*dto.DraftState, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Step == models.StepProfile {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "registration already submitted")
	}
	draft.Form.Merge(update)
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return draftState(draft), nil
}

// Submit finalises the registration. On success the draft is cleared and
// the new profile ID returned; on failure the draft is left untouched so
// the user can retry from the form step.
func (s *WizardService) Submit(ctx context.Context, id string) (*dto.SubmitResponse, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Step != models.StepForm {
		return nil, invalidTransition(draft.Step, models.StepProfile)
	}

	profile, err := s.registrar.Register(ctx, profileRequestFromDraft(draft), draft.SelfieKey)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to clear submitted draft", zap.String("draft_id", id), zap.Error(err))
	}
	return &dto.SubmitResponse{ProfileID: profile.ID, Step: models.StepProfile}, nil
}

// Reset abandons the draft and purges any captured selfie.
func (s *WizardService) Reset(ctx context.Context, id string) error {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return err
	}
	if draft.SelfieKey != "" {
		if err := s.selfies.Remove(draft.SelfieKey); err != nil {
			s.logger.Warn("failed to remove abandoned selfie", zap.String("key", draft.SelfieKey), zap.Error(err))
		}
	}
	if err := s.drafts.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete draft")
	}
	return nil
}

func transition(draft *models.Draft, next models.WizardStep) error {
	if !draft.Step.CanTransition(next) {
		return invalidTransition(draft.Step, next)
	}
	draft.Step = next
	return nil
}

func invalidTransition(from, to models.WizardStep) error {
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move from %s to %s", from, to))
}

func profileRequestFromDraft(draft *models.Draft) ProfileRequest {
	deref := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	return ProfileRequest{
		Name:           deref(draft.Form.Name),
		Email:          deref(draft.Form.Email),
		Phone:          deref(draft.Form.Phone),
		GraduationYear: deref(draft.Form.GraduationYear),
		Department:     deref(draft.Form.Department),
		Job:            deref(draft.Form.Job),
	}
}

func draftState(draft *models.Draft) *dto.DraftState {
	return &dto.DraftState{
		DraftID:   draft.ID,
		Step:      draft.Step,
		HasSelfie: draft.SelfieKey != "",
		Form:      draft.Form,
		ProfileID: draft.ProfileID,
	}
}
