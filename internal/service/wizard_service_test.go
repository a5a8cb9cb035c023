package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hari13172/alumni-portal-api/internal/models"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
)

type stubDraftStore struct {
	drafts map[string]*models.Draft
}

func newStubDraftStore() *stubDraftStore {
	return &stubDraftStore{drafts: make(map[string]*models.Draft)}
}

func (s *stubDraftStore) Get(ctx context.Context, id string) (*models.Draft, error) {
	draft, ok := s.drafts[id]
	if !ok {
		return nil, appErrors.ErrDraftNotFound
	}
	copied := *draft
	return &copied, nil
}

func (s *stubDraftStore) Save(ctx context.Context, draft *models.Draft) error {
	copied := *draft
	s.drafts[draft.ID] = &copied
	return nil
}

func (s *stubDraftStore) Delete(ctx context.Context, id string) error {
	delete(s.drafts, id)
	return nil
}

type stubSelfieProcessor struct {
	stored  int
	removed []string
}

func (s *stubSelfieProcessor) Store(data []byte) (string, error) {
	s.stored++
	return fmt.Sprintf("selfie-%d", s.stored), nil
}

func (s *stubSelfieProcessor) Remove(key string) error {
	s.removed = append(s.removed, key)
	return nil
}

type stubRegistrar struct {
	err      error
	requests []ProfileRequest
	keys     []string
}

func (s *stubRegistrar) Register(ctx context.Context, req ProfileRequest, selfieKey string) (*ProfileResponse, error) {
	s.requests = append(s.requests, req)
	s.keys = append(s.keys, selfieKey)
	if s.err != nil {
		return nil, s.err
	}
	return &ProfileResponse{Alumni: models.Alumni{ID: "profile-1"}}, nil
}

func newTestWizard() (*WizardService, *stubDraftStore, *stubSelfieProcessor, *stubRegistrar) {
	drafts := newStubDraftStore()
	selfies := &stubSelfieProcessor{}
	registrar := &stubRegistrar{}
	return NewWizardService(drafts, selfies, registrar, zap.NewNop()), drafts, selfies, registrar
}

func str(v string) *string { return &v }

func advanceToForm(t *testing.T, svc *WizardService) string {
	t.Helper()
	state, err := svc.Start(context.Background())
	require.NoError(t, err)
	_, err = svc.CompleteIntro(context.Background(), state.DraftID)
	require.NoError(t, err)
	_, err = svc.AttachSelfie(context.Background(), state.DraftID, []byte("frame"))
	require.NoError(t, err)
	return state.DraftID
}

func TestWizardStart(t *testing.T) {
	svc, drafts, _, _ := newTestWizard()

	state, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StepVideo, state.Step)
	assert.False(t, state.HasSelfie)
	assert.Contains(t, drafts.drafts, state.DraftID)
}

func TestWizardHappyPath(t *testing.T) {
	svc, drafts, _, registrar := newTestWizard()

	state, err := svc.Start(context.Background())
	require.NoError(t, err)
	id := state.DraftID

	state, err = svc.CompleteIntro(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StepSelfie, state.Step)

	state, err = svc.AttachSelfie(context.Background(), id, []byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, models.StepForm, state.Step)
	assert.True(t, state.HasSelfie)

	_, err = svc.UpdateForm(context.Background(), id, models.DraftForm{
		Name:  str("Priya"),
		Email: str("priya@example.com"),
	})
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", res.ProfileID)
	assert.Equal(t, models.StepProfile, res.Step)
	assert.NotContains(t, drafts.drafts, id)
	require.Len(t, registrar.keys, 1)
	assert.Equal(t, "selfie-1", registrar.keys[0])
	assert.Equal(t, "Priya", registrar.requests[0].Name)
}

func TestWizardInvalidTransitions(t *testing.T) {
	svc, _, _, _ := newTestWizard()

	state, err := svc.Start(context.Background())
	require.NoError(t, err)

	// Cannot capture a selfie before the intro is done.
	_, err = svc.AttachSelfie(context.Background(), state.DraftID, []byte("frame"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	// Cannot submit from the video step.
	_, err = svc.Submit(context.Background(), state.DraftID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	// Cannot retake before anything was captured.
	_, err = svc.RetakeSelfie(context.Background(), state.DraftID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestWizardRetakeDiscardsSelfie(t *testing.T) {
	svc, _, selfies, _ := newTestWizard()
	id := advanceToForm(t, svc)

	state, err := svc.RetakeSelfie(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StepSelfie, state.Step)
	assert.False(t, state.HasSelfie)
	assert.Equal(t, []string{"selfie-1"}, selfies.removed)

	// Capturing again issues a fresh key.
	state, err = svc.AttachSelfie(context.Background(), id, []byte("second frame"))
	require.NoError(t, err)
	assert.Equal(t, models.StepForm, state.Step)
	assert.True(t, state.HasSelfie)
}

func TestWizardUpdateFormMerges(t *testing.T) {
	svc, _, _, _ := newTestWizard()
	id := advanceToForm(t, svc)

	_, err := svc.UpdateForm(context.Background(), id, models.DraftForm{Name: str("Priya")})
	require.NoError(t, err)

	state, err := svc.UpdateForm(context.Background(), id, models.DraftForm{Email: str("priya@example.com")})
	require.NoError(t, err)
	require.NotNil(t, state.Form.Name)
	assert.Equal(t, "Priya", *state.Form.Name)
	require.NotNil(t, state.Form.Email)
	assert.Equal(t, "priya@example.com", *state.Form.Email)
}

func TestWizardSubmitFailurePreservesDraft(t *testing.T) {
	svc, drafts, _, registrar := newTestWizard()
	registrar.err = appErrors.Clone(appErrors.ErrValidation, "invalid profile payload")
	id := advanceToForm(t, svc)

	_, err := svc.Submit(context.Background(), id)
	require.Error(t, err)

	state, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StepForm, state.Step)
	assert.True(t, state.HasSelfie)
	assert.Contains(t, drafts.drafts, id)
}

func TestWizardResetPurgesSelfie(t *testing.T) {
	svc, drafts, selfies, _ := newTestWizard()
	id := advanceToForm(t, svc)

	require.NoError(t, svc.Reset(context.Background(), id))
	assert.NotContains(t, drafts.drafts, id)
	assert.Equal(t, []string{"selfie-1"}, selfies.removed)
}

func TestWizardGetMissingDraft(t *testing.T) {
	svc, _, _, _ := newTestWizard()

	_, err := svc.Get(context.Background(), "expired")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDraftNotFound.Code, appErrors.FromError(err).Code)
}
