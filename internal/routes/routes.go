package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"healthcare-scheduling-server/internal/config"
	"healthcare-scheduling-server/internal/handlers"
	"healthcare-scheduling-server/internal/logging"
	"healthcare-scheduling-server/internal/metrics"
	"healthcare-scheduling-server/internal/middleware"
	"healthcare-scheduling-server/internal/models"
	"healthcare-scheduling-server/internal/scheduling"
)

// NewRouter builds the gin engine with the global middleware stack and all routes.
func NewRouter(cfg *config.Config, svc *scheduling.Service, logger zerolog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logging.RequestID(), logging.Recovery(logger), logging.Logger(logger), m.Middleware())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", logging.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{logging.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	SetupRoutes(router, svc, cfg, gatherer)
	return router
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, svc *scheduling.Service, cfg *config.Config, gatherer prometheus.Gatherer) {
	appointmentHandler := handlers.NewAppointmentHandler(svc)
	prescriptionHandler := handlers.NewPrescriptionHandler(svc)
	doctorHandler := handlers.NewDoctorHandler(svc)
	adminHandler := handlers.NewAdminHandler(svc)

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg, svc))
	{
		appointmentRoutes := private.Group("/appointments")
		{
			// Only patients book, and only for themselves (enforced again in the service)
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CreateAppointment)

			// Scoped by role inside the service
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/stats", appointmentHandler.GetAppointmentStats)

			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id", appointmentHandler.UpdateAppointmentDetails)
			appointmentRoutes.GET("/:id/history", appointmentHandler.GetAppointmentHistory)

			// Transitions; who may do what is decided by the authorization gate
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PUT("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/confirm", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.ConfirmAppointment)
			appointmentRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.CompleteAppointment)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.PATCH("/appointments/:id/status", adminHandler.ForceAppointmentStatus)
		}

		private.GET("/doctors/:id/availability", doctorHandler.GetAvailability)

		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.GET("", prescriptionHandler.GetPrescriptions)
			prescriptionRoutes.GET("/:id", prescriptionHandler.GetPrescriptionByID)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
