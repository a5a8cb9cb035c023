package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hari13172/alumni-portal-api/internal/middleware"
	"github.com/hari13172/alumni-portal-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth      *AuthHandler
	Wizard    *WizardHandler
	Alumni    *AlumniHandler
	Dashboard *DashboardHandler
	QR        *QRHandler
	Metrics   *MetricsHandler
}

// RegisterRoutes mounts all portal routes under the API prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authService *service.AuthService) {
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	register := api.Group("/register")
	{
		register.POST("", h.Alumni.Register)
		register.POST("/draft", h.Wizard.Start)
		register.GET("/:draftId", h.Wizard.Get)
		register.POST("/:draftId/intro", h.Wizard.CompleteIntro)
		register.POST("/:draftId/selfie", h.Wizard.CaptureSelfie)
		register.POST("/:draftId/selfie/retake", h.Wizard.RetakeSelfie)
		register.PATCH("/:draftId/form", h.Wizard.UpdateForm)
		register.POST("/:draftId/submit", h.Wizard.Submit)
		register.DELETE("/:draftId", h.Wizard.Reset)
	}

	api.GET("/profile/:id", h.Alumni.Get)
	api.PUT("/profile/:id", h.Alumni.Update)
	api.GET("/profile/:id/qr", h.Alumni.ProfileQR)
	api.GET("/selfie/:key", h.Alumni.Selfie)
	api.POST("/qr/resolve", h.QR.Resolve)

	admin := api.Group("/admin")
	{
		admin.POST("/login", h.Auth.Login)
		admin.POST("/refresh", h.Auth.Refresh)

		protected := admin.Group("", middleware.JWT(authService))
		protected.POST("/logout", h.Auth.Logout)
		protected.GET("/me", h.Auth.Me)
		protected.GET("/alumni", h.Dashboard.List)
		protected.GET("/alumni/facets", h.Dashboard.Facets)
		protected.GET("/alumni/stats", h.Dashboard.Stats)
		protected.GET("/alumni/export", h.Dashboard.Export)
		protected.GET("/alumni/:id", h.Dashboard.Get)
		protected.DELETE("/alumni/:id", h.Dashboard.Delete)
	}
}
