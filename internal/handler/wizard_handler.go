package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hari13172/alumni-portal-api/internal/dto"
	"github.com/hari13172/alumni-portal-api/internal/service"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
	"github.com/hari13172/alumni-portal-api/pkg/response"
)

// WizardHandler exposes the step-by-step registration flow.
type WizardHandler struct {
	service *service.WizardService
	metrics *service.MetricsService
}

// NewWizardHandler creates a new handler.
func NewWizardHandler(svc *service.WizardService, metrics *service.MetricsService) *WizardHandler {
	return &WizardHandler{service: svc, metrics: metrics}
}

// Start godoc
// @Summary Start registration
// @Description Create a fresh registration draft at the intro step
// @Tags Registration
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /register/draft [post]
func (h *WizardHandler) Start(c *gin.Context) {
	state, err := h.service.Start(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, state)
}

// Get godoc
// @Summary Get draft state
// @Description Return the current step and form state of a draft
// @Tags Registration
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /register/{draftId} [get]
func (h *WizardHandler) Get(c *gin.Context) {
	state, err := h.service.Get(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// CompleteIntro godoc
// @Summary Complete intro step
// @Description Advance past the intro video (playback end or skip)
// @Tags Registration
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /register/{draftId}/intro [post]
func (h *WizardHandler) CompleteIntro(c *gin.Context) {
	state, err := h.service.CompleteIntro(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// CaptureSelfie godoc
// @Summary Attach captured selfie
// @Description Store the captured frame and advance to the form step
// @Tags Registration
// @Accept multipart/form-data
// @Produce json
// @Param draftId path string true "Draft ID"
// @Param selfie formData file true "Captured selfie frame"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /register/{draftId}/selfie [post]
func (h *WizardHandler) CaptureSelfie(c *gin.Context) {
	frame, err := readUpload(c, "selfie")
	if err != nil {
		response.Error(c, err)
		return
	}

	state, err := h.service.AttachSelfie(c.Request.Context(), c.Param("draftId"), frame)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// RetakeSelfie godoc
// @Summary Retake selfie
// @Description Discard the captured selfie and return to the capture step
// @Tags Registration
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /register/{draftId}/selfie/retake [post]
func (h *WizardHandler) RetakeSelfie(c *gin.Context) {
	state, err := h.service.RetakeSelfie(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// UpdateForm godoc
// @Summary Update draft form fields
// @Description Merge partial form input into the draft
// @Tags Registration
// @Accept json
// @Produce json
// @Param draftId path string true "Draft ID"
// @Param payload body dto.UpdateFormRequest true "Partial form fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /register/{draftId}/form [patch]
func (h *WizardHandler) UpdateForm(c *gin.Context) {
	var req dto.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}

	state, err := h.service.UpdateForm(c.Request.Context(), c.Param("draftId"), req.Form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Submit godoc
// @Summary Submit registration
// @Description Validate the draft and create the alumni profile
// @Tags Registration
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /register/{draftId}/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	res, err := h.service.Submit(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordRegistration()
	response.Created(c, res)
}

// Reset godoc
// @Summary Abandon registration
// @Description Delete the draft and any captured selfie
// @Tags Registration
// @Param draftId path string true "Draft ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /register/{draftId} [delete]
func (h *WizardHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), c.Param("draftId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// readUpload pulls a multipart file field into memory.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, field+" file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read "+field+" upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read "+field+" upload")
	}
	return data, nil
}
