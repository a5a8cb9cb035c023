package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hari13172/alumni-portal-api/internal/dto"
	"github.com/hari13172/alumni-portal-api/internal/middleware"
	"github.com/hari13172/alumni-portal-api/internal/service"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
	"github.com/hari13172/alumni-portal-api/pkg/response"
)

// DashboardHandler serves the admin roster endpoints.
type DashboardHandler struct {
	service *service.DashboardService
	metrics *service.MetricsService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService, metrics *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List alumni roster
// @Description Return the roster filtered by search, department and year
// @Tags Dashboard
// @Produce json
// @Param search query string false "Name or email substring"
// @Param department query string false "Department or All"
// @Param year query string false "Graduation year or All"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/alumni [get]
func (h *DashboardHandler) List(c *gin.Context) {
	var filter dto.RosterFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter"))
		return
	}

	rows, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"count": len(rows)})
}

// Facets godoc
// @Summary Roster filter options
// @Description Return the distinct department and year filter choices
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/alumni/facets [get]
func (h *DashboardHandler) Facets(c *gin.Context) {
	facets, err := h.service.Facets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facets, nil)
}

// Stats godoc
// @Summary Roster statistics
// @Description Return totals and breakdowns for the dashboard cards
// @Tags Dashboard
// @Produce json
// @Param search query string false "Name or email substring"
// @Param department query string false "Department or All"
// @Param year query string false "Graduation year or All"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/alumni/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	var filter dto.RosterFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter"))
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Get godoc
// @Summary Get roster entry
// @Description Return a single alumni entry for the admin detail view
// @Tags Dashboard
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/alumni/{id} [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	row, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Delete godoc
// @Summary Delete alumni profile
// @Description Soft-delete a profile and purge its selfie
// @Tags Dashboard
// @Param id path string true "Profile ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/alumni/{id} [delete]
func (h *DashboardHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), auditMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export roster
// @Description Download the filtered roster as JSON, CSV or PDF
// @Tags Dashboard
// @Produce json
// @Param search query string false "Name or email substring"
// @Param department query string false "Department or All"
// @Param year query string false "Graduation year or All"
// @Param format query string false "json, csv or pdf" default(json)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/alumni/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	var filter dto.RosterFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter"))
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportJSON)))

	result, err := h.service.Export(c.Request.Context(), filter, format, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordExport(string(format))

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func auditMeta(c *gin.Context) service.AuditMeta {
	meta := service.AuditMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
	if claims, ok := middleware.CurrentAdmin(c); ok {
		meta.AdminID = claims.AdminID
	}
	return meta
}
