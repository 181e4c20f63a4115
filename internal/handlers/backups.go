package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"clinic-app-server/internal/backup"
	"clinic-app-server/internal/utils"
)

// BackupHandler exposes the backup manager. The request-handling model
// serializes these against record writes; no backup runs while a store
// mutation is in flight on the same server.
type BackupHandler struct {
	Manager *backup.Manager
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(m *backup.Manager) *BackupHandler {
	return &BackupHandler{Manager: m}
}

// CreateBackupRequest optionally selects the backup kind.
type CreateBackupRequest struct {
	Type string `json:"type"`
}

// CreateBackup snapshots the store file into a new archive.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	var req CreateBackupRequest
	_ = c.ShouldBindJSON(&req)

	kind := backup.KindManual
	if req.Type != "" {
		switch backup.Kind(req.Type) {
		case backup.KindManual, backup.KindAuto:
			kind = backup.Kind(req.Type)
		default:
			utils.BadRequest(c, "Invalid backup type: "+req.Type)
			return
		}
	}

	info, err := h.Manager.CreateBackup(kind)
	if errors.Is(err, backup.ErrDatabaseMissing) {
		utils.NotFound(c, "Database file not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Backup failed: "+err.Error())
		return
	}
	message := fmt.Sprintf("Backup created successfully: %s (%.1f KB)",
		info.Filename, float64(info.SizeBytes)/1024)
	utils.Created(c, message, info)
}

// ListBackups enumerates available archives, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	backups, err := h.Manager.ListBackups()
	if err != nil {
		utils.InternalServerError(c, "Failed to list backups: "+err.Error())
		return
	}
	utils.Success(c, "Backups retrieved", backups)
}

// RestoreBackup replaces the live store file with an archived copy.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	filename := c.Param("filename")
	report, err := h.Manager.RestoreBackup(filename)
	if errors.Is(err, backup.ErrBackupNotFound) {
		utils.NotFound(c, "Backup file not found")
		return
	}
	if errors.Is(err, backup.ErrCorrupt) {
		utils.BadRequest(c, "Backup file is corrupted: "+err.Error())
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Restore failed: "+err.Error())
		return
	}
	message := fmt.Sprintf("Database restored successfully from %s. Found %d patients and %d visits.",
		filename, report.Patients, report.Visits)
	utils.Success(c, message, report)
}

// VerifyIntegrity reports every structural problem found in the live
// store file.
func (h *BackupHandler) VerifyIntegrity(c *gin.Context) {
	report, err := h.Manager.VerifyIntegrity()
	if err != nil {
		utils.InternalServerError(c, "Integrity check failed: "+err.Error())
		return
	}
	message := "Database is healthy"
	if !report.Healthy {
		message = fmt.Sprintf("Found %d integrity issues", len(report.Issues))
	}
	utils.Success(c, message, report)
}

// AutoBackup creates a daily auto archive unless one already exists
// for today.
func (h *BackupHandler) AutoBackup(c *gin.Context) {
	info, err := h.Manager.AutoBackupIfNeeded()
	if errors.Is(err, backup.ErrDatabaseMissing) {
		utils.NotFound(c, "Database file not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Auto backup failed: "+err.Error())
		return
	}
	if info == nil {
		utils.Success(c, "Automatic backup already exists for today", nil)
		return
	}
	utils.Created(c, "Automatic backup created: "+info.Filename, info)
}

// GetStats reports store file size and record activity.
func (h *BackupHandler) GetStats(c *gin.Context) {
	stats, err := h.Manager.GetStats()
	if errors.Is(err, backup.ErrDatabaseMissing) {
		utils.NotFound(c, "Database file not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to get stats: "+err.Error())
		return
	}
	utils.Success(c, "Backup stats retrieved", stats)
}
