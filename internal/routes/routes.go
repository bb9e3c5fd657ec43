package routes

import (
	"healthcare-app-client/internal/handlers"
	"healthcare-app-client/internal/middleware"
	"healthcare-app-client/internal/models"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services the portal routes delegate to.
type Dependencies struct {
	Session      middleware.Authorizer
	Auth         *handlers.AuthHandler
	Doctors      *handlers.DoctorHandler
	Appointment  *handlers.AppointmentHandler
	Prescription *handlers.PrescriptionHandler
}

// SetupRoutes configures the portal routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	// Public routes
	public := router.Group("/")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", deps.Auth.Login)
			authRoutes.POST("/register", deps.Auth.Register)
			authRoutes.POST("/logout", deps.Auth.Logout)
		}

		doctorRoutes := public.Group("/doctors")
		{
			doctorRoutes.GET("", deps.Doctors.GetDoctors)
			doctorRoutes.GET("/specializations", deps.Doctors.GetSpecializations)
			doctorRoutes.GET("/:id", deps.Doctors.GetDoctorByID)
		}
	}

	// Routes that need a live session
	private := router.Group("/")
	private.Use(middleware.SessionRequired(deps.Session))
	{
		private.GET("/auth/me", deps.Auth.Me)

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.GET("", deps.Appointment.GetAppointments)
			appointmentRoutes.GET("/:id", deps.Appointment.GetAppointment)
			appointmentRoutes.POST("", middleware.RoleRequired(models.RolePatient), deps.Appointment.CreateAppointment)
			appointmentRoutes.PUT("/:id/cancel", middleware.RoleRequired(models.RolePatient, models.RoleDoctor), deps.Appointment.CancelAppointment)
			appointmentRoutes.PUT("/:id/complete", middleware.RoleRequired(models.RoleDoctor), deps.Appointment.CompleteAppointment)
		}

		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.GET("", deps.Prescription.GetPrescriptions)
			prescriptionRoutes.GET("/:id", deps.Prescription.GetPrescription)
			prescriptionRoutes.GET("/:id/pdf", deps.Prescription.DownloadPrescription)
			prescriptionRoutes.POST("", middleware.RoleRequired(models.RoleDoctor), deps.Prescription.CreatePrescription)
			prescriptionRoutes.PUT("/:id/pay", middleware.RoleRequired(models.RolePatient, models.RoleAdmin), deps.Prescription.PayPrescription)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
