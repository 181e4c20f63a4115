package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-app-server/internal/backup"
	"clinic-app-server/internal/config"
	"clinic-app-server/internal/healthfacts"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
)

// DashboardHandler assembles the landing-page data: record stats,
// backup stats, recent patients and the daily health fact.
type DashboardHandler struct {
	Store   *store.Store
	Manager *backup.Manager
	Cfg     *config.Config
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(s *store.Store, m *backup.Manager, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{Store: s, Manager: m, Cfg: cfg}
}

// GetDashboard returns aggregate stats and the daily health fact.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	stats, err := h.Store.GetStats()
	if err != nil {
		utils.InternalServerError(c, "Failed to load stats: "+err.Error())
		return
	}

	patients, err := h.Store.GetAllPatients()
	if err != nil {
		utils.InternalServerError(c, "Failed to load patients: "+err.Error())
		return
	}
	if len(patients) > 5 {
		patients = patients[:5]
	}

	payload := gin.H{
		"stats":          stats,
		"recentPatients": patients,
		"healthFact":     healthfacts.Daily(),
	}
	if backupStats, err := h.Manager.GetStats(); err == nil {
		payload["backupStats"] = backupStats
	}

	utils.Success(c, "Dashboard data retrieved", payload)
}

// GetHealthFact returns a random health fact, or all facts of a
// category when one is requested.
func (h *DashboardHandler) GetHealthFact(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		facts := healthfacts.ByCategory(category)
		if len(facts) == 0 {
			utils.NotFound(c, "No health facts in category: "+category)
			return
		}
		utils.Success(c, "Health facts retrieved", facts)
		return
	}
	utils.Success(c, "Health fact retrieved", healthfacts.Random())
}

// GetDailyHealthFact returns the deterministic fact of the day.
func (h *DashboardHandler) GetDailyHealthFact(c *gin.Context) {
	utils.Success(c, "Daily health fact retrieved", healthfacts.Daily())
}

// GetClinicInfo returns the configured clinic and doctor details.
func (h *DashboardHandler) GetClinicInfo(c *gin.Context) {
	clinic := h.Cfg.Clinic
	utils.Success(c, "Clinic info retrieved", gin.H{
		"clinicName":        clinic.ClinicName,
		"doctorName":        clinic.DoctorName,
		"phone":             clinic.Phone,
		"consultationHours": clinic.ConsultationHours,
	})
}
