package routes

import (
	"github.com/gin-gonic/gin"

	"clinic-app-server/internal/backup"
	"clinic-app-server/internal/config"
	"clinic-app-server/internal/handlers"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, s *store.Store, m *backup.Manager, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(cfg)
	patientHandler := handlers.NewPatientHandler(s)
	visitHandler := handlers.NewVisitHandler(s)
	adminHandler := handlers.NewAdminHandler(s)
	backupHandler := handlers.NewBackupHandler(m)
	dashboardHandler := handlers.NewDashboardHandler(s, m, cfg)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
		public.GET("/clinic-info", dashboardHandler.GetClinicInfo)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.GET("/dashboard", dashboardHandler.GetDashboard)
		private.GET("/health-facts", dashboardHandler.GetHealthFact)
		private.GET("/health-facts/daily", dashboardHandler.GetDailyHealthFact)

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/search", patientHandler.SearchPatients)
			patientRoutes.POST("/merge", patientHandler.MergePatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.GET("/:id/summary", patientHandler.GetPatientSummary)
			patientRoutes.PATCH("/:id", patientHandler.UpdatePatient)
			patientRoutes.GET("/:id/weight-progression", patientHandler.GetWeightProgression)
			patientRoutes.GET("/:id/visits", visitHandler.GetVisits)
			patientRoutes.POST("/:id/visits", visitHandler.CreateVisit)

			// Deletion subsystem
			patientRoutes.DELETE("/:id", adminHandler.DeletePatient)
			patientRoutes.DELETE("/:id/permanent", adminHandler.HardDeletePatient)
			patientRoutes.POST("/:id/restore", adminHandler.RestorePatient)
		}

		private.DELETE("/visits/:id", visitHandler.DeleteVisit)

		adminRoutes := private.Group("/admin")
		{
			adminRoutes.GET("/deleted-records", adminHandler.ListDeletedRecords)
			adminRoutes.GET("/audit-log", adminHandler.ListAuditLog)
		}

		backupRoutes := private.Group("/backups")
		{
			backupRoutes.POST("", backupHandler.CreateBackup)
			backupRoutes.GET("", backupHandler.ListBackups)
			backupRoutes.GET("/verify", backupHandler.VerifyIntegrity)
			backupRoutes.GET("/stats", backupHandler.GetStats)
			backupRoutes.POST("/auto", backupHandler.AutoBackup)
			backupRoutes.POST("/:filename/restore", backupHandler.RestoreBackup)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
