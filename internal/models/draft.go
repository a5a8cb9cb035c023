package models

import "time"

// WizardStep enumerates the registration flow states. The flow is strictly
// sequential: video → selfie → form → profile. Admin screens are a separate
// authenticated surface, not wizard steps.
type WizardStep string

const (
	StepVideo   WizardStep = "video"
	StepSelfie  WizardStep = "selfie"
	StepForm    WizardStep = "form"
	StepProfile WizardStep = "profile"
)

// CanTransition reports whether moving from s to next is a legal wizard
// transition. Retake (form → selfie) is the only backward edge.
func (s WizardStep) CanTransition(next WizardStep) bool {
	switch s {
	case StepVideo:
		return next == StepSelfie
	case StepSelfie:
		return next == StepForm
	case StepForm:
		return next == StepProfile || next == StepSelfie
	case StepProfile:
		return false
	default:
		return false
	}
}

// DraftForm holds the partially filled registration fields. Pointers
// distinguish "not yet provided" from an explicit empty value so that
// merges never erase earlier input.
type DraftForm struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	GraduationYear *string `json:"graduationYear,omitempty"`
	Department     *string `json:"department,omitempty"`
	Job            *string `json:"job,omitempty"`
}

// Merge overlays the provided fields onto the form, keeping existing
// values where the update leaves a field unset.
func (f *DraftForm) Merge(update DraftForm) {
	if update.Name != nil {
		f.Name = update.Name
	}
	if update.Email != nil {
		f.Email = update.Email
	}
	if update.Phone != nil {
		f.Phone = update.Phone
	}
	if update.GraduationYear != nil {
		f.GraduationYear = update.GraduationYear
	}
	if update.Department != nil {
		f.Department = update.Department
	}
	if update.Job != nil {
		f.Job = update.Job
	}
}

// Draft is an in-progress registration held in Redis until submission.
type Draft struct {
	ID        string     `json:"id"`
	Step      WizardStep `json:"step"`
	SelfieKey string     `json:"selfieKey,omitempty"`
	Form      DraftForm  `json:"form"`
	ProfileID string     `json:"profileId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
