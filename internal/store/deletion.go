package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"clinic-app-server/internal/models"
)

// SoftDeleteResult reports a patient soft deletion.
type SoftDeleteResult struct {
	PatientName string `json:"patientName"`
	VisitCount  int64  `json:"visitCount"`
}

// HardDeleteResult reports a permanent patient deletion.
type HardDeleteResult struct {
	PatientName   string `json:"patientName"`
	VisitsDeleted int64  `json:"visitsDeleted"`
}

// VisitDeleteResult reports a visit soft deletion.
type VisitDeleteResult struct {
	PatientName string `json:"patientName"`
	VisitDate   string `json:"visitDate"`
}

// RestoreResult reports a patient restoration.
type RestoreResult struct {
	PatientName    string `json:"patientName"`
	VisitsRestored int64  `json:"visitsRestored"`
}

// DeletedRecordView is a deleted-record entry annotated with the
// current name of the underlying record where one still exists.
type DeletedRecordView struct {
	models.DeletedRecord
	RecordName string `json:"recordName"`
}

func (s *Store) logAudit(tx *gorm.DB, action models.AuditAction, recordTable string, recordID uint, oldData, newData, actor, details string) error {
	if actor == "" {
		actor = "system"
	}
	entry := models.AuditLog{
		Action:      action,
		RecordTable: recordTable,
		RecordID:    recordID,
		OldData:     oldData,
		NewData:     newData,
		UserID:      actor,
		Details:     details,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}

// SoftDeletePatient marks a patient and all of its visits deleted,
// keeping the data for restore. One deleted-record entry with the full
// pre-deletion snapshot and one audit entry are written in the same
// transaction.
func (s *Store) SoftDeletePatient(id uint, reason, actor string) (*SoftDeleteResult, error) {
	var result SoftDeleteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		err := active(tx).Where("patient_id = ?", id).First(&patient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading patient: %w", err)
		}

		var visitCount int64
		if err := active(tx.Model(&models.Visit{})).Where("patient_id = ?", id).Count(&visitCount).Error; err != nil {
			return fmt.Errorf("counting visits: %w", err)
		}

		snapshot, err := models.EncodeSnapshot(models.NewPatientSnapshot(&patient, visitCount))
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Patient{}).Where("patient_id = ?", id).
			UpdateColumn("is_deleted", true).Error; err != nil {
			return fmt.Errorf("flagging patient: %w", err)
		}
		if err := tx.Model(&models.Visit{}).Where("patient_id = ?", id).
			UpdateColumn("is_deleted", true).Error; err != nil {
			return fmt.Errorf("flagging visits: %w", err)
		}

		deleted := models.DeletedRecord{
			RecordTable:    "patients",
			RecordID:       id,
			OriginalData:   snapshot,
			DeletedBy:      orSystem(actor),
			DeletionReason: reason,
			CanRestore:     true,
		}
		if err := tx.Create(&deleted).Error; err != nil {
			return fmt.Errorf("recording deletion: %w", err)
		}

		details := fmt.Sprintf("Soft deleted patient '%s' with %d visits. Reason: %s",
			patient.Name, visitCount, reason)
		if err := s.logAudit(tx, models.ActionDelete, "patients", id, snapshot, "", actor, details); err != nil {
			return err
		}

		result = SoftDeleteResult{PatientName: patient.Name, VisitCount: visitCount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("patient_id", id).Str("actor", orSystem(actor)).Msg("patient soft deleted")
	return &result, nil
}

// HardDeletePatient irreversibly removes a patient and all of its
// visits. The caller must supply the confirmation code
// DELETE-{id}-PERMANENT. Only an audit entry is written; there is no
// restore record because the action cannot be undone.
func (s *Store) HardDeletePatient(id uint, confirmationCode, actor string) (*HardDeleteResult, error) {
	if confirmationCode != fmt.Sprintf("DELETE-%d-PERMANENT", id) {
		return nil, ErrInvalidConfirmation
	}

	var result HardDeleteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		err := tx.Where("patient_id = ?", id).First(&patient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading patient: %w", err)
		}

		snapshot, err := models.EncodeSnapshot(models.NewPatientSnapshot(&patient, 0))
		if err != nil {
			return err
		}

		visitDelete := tx.Where("patient_id = ?", id).Delete(&models.Visit{})
		if visitDelete.Error != nil {
			return fmt.Errorf("deleting visits: %w", visitDelete.Error)
		}
		if err := tx.Delete(&models.Patient{}, id).Error; err != nil {
			return fmt.Errorf("deleting patient: %w", err)
		}

		details := fmt.Sprintf("PERMANENT deletion of patient '%s' and %d visits",
			patient.Name, visitDelete.RowsAffected)
		if err := s.logAudit(tx, models.ActionHardDelete, "patients", id, snapshot, "", actor, details); err != nil {
			return err
		}

		result = HardDeleteResult{PatientName: patient.Name, VisitsDeleted: visitDelete.RowsAffected}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Warn().Uint("patient_id", id).Str("actor", orSystem(actor)).Msg("patient permanently deleted")
	return &result, nil
}

// SoftDeleteVisit marks a single visit deleted, writing the same
// deleted-record and audit entries as a patient-level deletion.
func (s *Store) SoftDeleteVisit(id uint, reason, actor string) (*VisitDeleteResult, error) {
	var result VisitDeleteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var visit models.Visit
		err := active(tx).Where("visit_id = ?", id).First(&visit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading visit: %w", err)
		}

		patientName := "unknown"
		var patient models.Patient
		if err := tx.Where("patient_id = ?", visit.PatientID).First(&patient).Error; err == nil {
			patientName = patient.Name
		}

		snapshot, err := models.EncodeSnapshot(models.NewVisitSnapshot(&visit))
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Visit{}).Where("visit_id = ?", id).
			UpdateColumn("is_deleted", true).Error; err != nil {
			return fmt.Errorf("flagging visit: %w", err)
		}

		deleted := models.DeletedRecord{
			RecordTable:    "visits",
			RecordID:       id,
			OriginalData:   snapshot,
			DeletedBy:      orSystem(actor),
			DeletionReason: reason,
			CanRestore:     true,
		}
		if err := tx.Create(&deleted).Error; err != nil {
			return fmt.Errorf("recording deletion: %w", err)
		}

		details := fmt.Sprintf("Deleted visit for patient '%s'. Reason: %s", patientName, reason)
		if err := s.logAudit(tx, models.ActionDelete, "visits", id, snapshot, "", actor, details); err != nil {
			return err
		}

		result = VisitDeleteResult{PatientName: patientName, VisitDate: visit.VisitDate}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("visit_id", id).Str("actor", orSystem(actor)).Msg("visit soft deleted")
	return &result, nil
}

// RestorePatient clears the deletion flag on a soft-deleted patient
// and every one of its visits, including visits that were individually
// deleted beforehand, and appends a RESTORE audit entry.
func (s *Store) RestorePatient(id uint, actor string) (*RestoreResult, error) {
	var result RestoreResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		err := tx.Where("patient_id = ? AND is_deleted = ?", id, true).First(&patient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading deleted patient: %w", err)
		}

		if err := tx.Model(&models.Patient{}).Where("patient_id = ?", id).
			UpdateColumn("is_deleted", false).Error; err != nil {
			return fmt.Errorf("restoring patient: %w", err)
		}
		visitRestore := tx.Model(&models.Visit{}).Where("patient_id = ?", id).
			UpdateColumn("is_deleted", false)
		if visitRestore.Error != nil {
			return fmt.Errorf("restoring visits: %w", visitRestore.Error)
		}

		details := fmt.Sprintf("Restored patient '%s' and %d visits", patient.Name, visitRestore.RowsAffected)
		if err := s.logAudit(tx, models.ActionRestore, "patients", id, "", "", actor, details); err != nil {
			return err
		}

		result = RestoreResult{PatientName: patient.Name, VisitsRestored: visitRestore.RowsAffected}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("patient_id", id).Str("actor", orSystem(actor)).Msg("patient restored")
	return &result, nil
}

// ListDeletedRecords returns the most recent deletions, newest first.
func (s *Store) ListDeletedRecords(limit int) ([]DeletedRecordView, error) {
	var records []models.DeletedRecord
	err := s.db.Order("deletion_timestamp DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing deleted records: %w", err)
	}

	views := make([]DeletedRecordView, 0, len(records))
	for _, r := range records {
		view := DeletedRecordView{DeletedRecord: r, RecordName: "N/A"}
		if r.RecordTable == "patients" {
			var patient models.Patient
			if err := s.db.Where("patient_id = ?", r.RecordID).First(&patient).Error; err == nil {
				view.RecordName = patient.Name
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// ListAuditLog returns the most recent audit entries, newest first.
func (s *Store) ListAuditLog(limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := s.db.Order("timestamp DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	return entries, nil
}

func orSystem(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}
