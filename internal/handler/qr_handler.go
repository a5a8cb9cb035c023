package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hari13172/alumni-portal-api/internal/dto"
	"github.com/hari13172/alumni-portal-api/internal/service"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
	"github.com/hari13172/alumni-portal-api/pkg/response"
)

// QRHandler resolves scanned QR payloads for the client scanner view.
type QRHandler struct {
	service *service.QRService
	metrics *service.MetricsService
}

// NewQRHandler creates a new handler.
func NewQRHandler(svc *service.QRService, metrics *service.MetricsService) *QRHandler {
	return &QRHandler{service: svc, metrics: metrics}
}

// Resolve godoc
// @Summary Resolve QR payload
// @Description Classify a decoded QR payload into an in-app navigation or an external redirect
// @Tags QR
// @Accept json
// @Produce json
// @Param payload body dto.ResolveQRRequest true "Decoded QR text"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /qr/resolve [post]
func (h *QRHandler) Resolve(c *gin.Context) {
	var req dto.ResolveQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid QR payload"))
		return
	}

	res, err := h.service.Resolve(req.Payload)
	if err != nil {
		h.metrics.RecordQRResolution("invalid")
		response.Error(c, err)
		return
	}
	h.metrics.RecordQRResolution(string(res.Action))
	response.JSON(c, http.StatusOK, res, nil)
}
