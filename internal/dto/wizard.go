package dto

import "github.com/hari13172/alumni-portal-api/internal/models"

// DraftState is the wizard state returned to the client after every
// transition, so the UI always knows which step to mount.
type DraftState struct {
	DraftID   string            `json:"draft_id"`
	Step      models.WizardStep `json:"step"`
	HasSelfie bool              `json:"has_selfie"`
	Form      models.DraftForm  `json:"form"`
	ProfileID string            `json:"profile_id,omitempty"`
}

// UpdateFormRequest merges partial field input into the draft.
type UpdateFormRequest struct {
	Form models.DraftForm `json:"form"`
}

// SubmitResponse carries the outcome of a successful registration.
type SubmitResponse struct {
	ProfileID string            `json:"profile_id"`
	Step      models.WizardStep `json:"step"`
}
