package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hari13172/alumni-portal-api/internal/service"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
	"github.com/hari13172/alumni-portal-api/pkg/response"
)

// AlumniHandler serves public profile pages, selfie images and profile
// QR codes.
type AlumniHandler struct {
	alumni  *service.AlumniService
	selfies *service.SelfieService
	qr      *service.QRService
	metrics *service.MetricsService
}

// NewAlumniHandler creates a new handler.
func NewAlumniHandler(alumni *service.AlumniService, selfies *service.SelfieService, qr *service.QRService, metrics *service.MetricsService) *AlumniHandler {
	return &AlumniHandler{alumni: alumni, selfies: selfies, qr: qr, metrics: metrics}
}

// Register godoc
// @Summary Register alumni profile
// @Description Create a profile from a single multipart submission
// @Tags Alumni
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Full name"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Param graduationYear formData string true "Graduation year"
// @Param department formData string true "Department"
// @Param job formData string true "Current job"
// @Param selfie formData file true "Captured selfie"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /register [post]
func (h *AlumniHandler) Register(c *gin.Context) {
	var req service.ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	var selfieKey string
	if _, err := c.FormFile("selfie"); err == nil {
		frame, readErr := readUpload(c, "selfie")
		if readErr != nil {
			response.Error(c, readErr)
			return
		}
		key, storeErr := h.selfies.Store(frame)
		if storeErr != nil {
			response.Error(c, storeErr)
			return
		}
		selfieKey = key
	}

	profile, err := h.alumni.Register(c.Request.Context(), req, selfieKey)
	if err != nil {
		if selfieKey != "" {
			_ = h.selfies.Remove(selfieKey)
		}
		response.Error(c, err)
		return
	}
	h.metrics.RecordRegistration()
	response.Created(c, profile)
}

// Get godoc
// @Summary Get alumni profile
// @Description Return a registered alumni profile
// @Tags Alumni
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/{id} [get]
func (h *AlumniHandler) Get(c *gin.Context) {
	profile, err := h.alumni.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Update alumni profile
// @Description Edit profile fields, optionally replacing the selfie
// @Tags Alumni
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Profile ID"
// @Param name formData string true "Full name"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Param graduationYear formData string true "Graduation year"
// @Param department formData string true "Department"
// @Param job formData string true "Current job"
// @Param selfie formData file false "Replacement selfie"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profile/{id} [put]
func (h *AlumniHandler) Update(c *gin.Context) {
	var req service.ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	var newSelfieKey string
	if _, err := c.FormFile("selfie"); err == nil {
		frame, readErr := readUpload(c, "selfie")
		if readErr != nil {
			response.Error(c, readErr)
			return
		}
		key, storeErr := h.selfies.Store(frame)
		if storeErr != nil {
			response.Error(c, storeErr)
			return
		}
		newSelfieKey = key
	}

	profile, err := h.alumni.Update(c.Request.Context(), c.Param("id"), req, newSelfieKey)
	if err != nil {
		if newSelfieKey != "" {
			_ = h.selfies.Remove(newSelfieKey)
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Selfie godoc
// @Summary Serve selfie image
// @Description Stream a stored selfie as JPEG
// @Tags Alumni
// @Produce jpeg
// @Param key path string true "Selfie key"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /selfie/{key} [get]
func (h *AlumniHandler) Selfie(c *gin.Context) {
	file, err := h.selfies.Open(c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat selfie"))
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, info.Size(), "image/jpeg", file, nil)
}

// ProfileQR godoc
// @Summary Profile QR code
// @Description Render a PNG QR code linking to the profile page
// @Tags Alumni
// @Produce png
// @Param id path string true "Profile ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /profile/{id}/qr [get]
func (h *AlumniHandler) ProfileQR(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.alumni.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	png, err := h.qr.ProfileCode(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
