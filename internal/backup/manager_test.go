package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clinic-app-server/internal/config"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Database:   config.DatabaseConfig{Path: filepath.Join(root, "data", "clinic.db")},
		Backup:     config.BackupConfig{Dir: filepath.Join(root, "backups"), KeepCount: 10},
		AppVersion: "1.0.0",
	}
	return NewManager(cfg, zerolog.Nop()), cfg
}

func seedDatabase(t *testing.T, cfg *config.Config, patients int) (*store.Store, *gorm.DB) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755))
	db, err := models.InitDB(models.DatabaseConfig{Path: cfg.Database.Path})
	require.NoError(t, err)

	s := store.New(db, zerolog.Nop())
	for i := 0; i < patients; i++ {
		_, err := s.AddPatient(store.NewPatient{
			Name:   fmt.Sprintf("Patient %d", i+1),
			Age:    30,
			Gender: models.GenderFemale,
			Phone:  fmt.Sprintf("98765%05d", i),
		})
		require.NoError(t, err)
	}
	return s, db
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.CreateBackup(KindManual)
	assert.ErrorIs(t, err, ErrDatabaseMissing)
}

func TestCreateBackupAndList(t *testing.T) {
	m, cfg := newTestManager(t)
	seedDatabase(t, cfg, 2)

	info, err := m.CreateBackup(KindManual)
	require.NoError(t, err)
	assert.Equal(t, KindManual, info.Kind)
	assert.NotEmpty(t, info.ID)
	assert.Greater(t, info.SizeBytes, int64(0))
	assert.Equal(t, "1.0.0", info.AppVersion)
	assert.FileExists(t, filepath.Join(cfg.Backup.Dir, info.Filename))

	backups, err := m.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, info.ID, backups[0].ID, "listing reuses the manifest entry")
	assert.Equal(t, info.Filename, backups[0].Filename)
}

func TestParseArchiveName(t *testing.T) {
	kind, created, err := parseArchiveName("clinic_backup_manual_20240315_143000.zip")
	require.NoError(t, err)
	assert.Equal(t, KindManual, kind)
	assert.Equal(t, time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local), created)

	// The kind itself may contain an underscore.
	kind, created, err = parseArchiveName("clinic_backup_pre_restore_20240315_143000.zip")
	require.NoError(t, err)
	assert.Equal(t, KindPreRestore, kind)
	assert.Equal(t, 15, created.Day())

	_, _, err = parseArchiveName("random.zip")
	assert.Error(t, err)
	_, _, err = parseArchiveName("clinic_backup_manual.zip")
	assert.Error(t, err)
	_, _, err = parseArchiveName("clinic_backup_manual_notadate_000000.zip")
	assert.Error(t, err)
}

func TestRestoreBackupRoundTrip(t *testing.T) {
	m, cfg := newTestManager(t)
	s, _ := seedDatabase(t, cfg, 2)
	_, err := s.AddVisit(1, store.NewVisit{VisitDate: "2024-03-01"})
	require.NoError(t, err)

	info, err := m.CreateBackup(KindManual)
	require.NoError(t, err)

	// Mutate the live store after the snapshot.
	_, err = s.AddPatient(store.NewPatient{
		Name: "Late Arrival", Age: 50, Gender: models.GenderMale, Phone: "9111111111",
	})
	require.NoError(t, err)

	report, err := m.RestoreBackup(info.Filename)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Patients)
	assert.Equal(t, int64(1), report.Visits)
	assert.Contains(t, report.PreRestoreArchive, "pre_restore")
	assert.FileExists(t, filepath.Join(cfg.Backup.Dir, report.PreRestoreArchive),
		"the pre-restore safety snapshot is kept")

	patients, visits, err := countCoreRows(cfg.Database.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), patients, "the post-backup insert is gone")
	assert.Equal(t, int64(1), visits)

	// Restoring the safety snapshot undoes the restore itself.
	_, err = m.RestoreBackup(report.PreRestoreArchive)
	require.NoError(t, err)
	patients, _, err = countCoreRows(cfg.Database.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), patients)
}

func TestCreateBackupNeverOverwrites(t *testing.T) {
	m, cfg := newTestManager(t)
	seedDatabase(t, cfg, 1)

	// Names resolve to the second; back-to-back backups must not share one.
	first, err := m.CreateBackup(KindManual)
	require.NoError(t, err)
	second, err := m.CreateBackup(KindManual)
	require.NoError(t, err)

	assert.NotEqual(t, first.Filename, second.Filename)
	assert.FileExists(t, filepath.Join(cfg.Backup.Dir, first.Filename))
	assert.FileExists(t, filepath.Join(cfg.Backup.Dir, second.Filename))
}

func TestRestoreRefreshesLiveConnections(t *testing.T) {
	m, cfg := newTestManager(t)
	s, db := seedDatabase(t, cfg, 2)
	m.OnRestore(func() error {
		return models.ResetPool(db)
	})

	info, err := m.CreateBackup(KindManual)
	require.NoError(t, err)
	_, err = s.AddPatient(store.NewPatient{
		Name: "Late Arrival", Age: 50, Gender: models.GenderMale, Phone: "9111111111",
	})
	require.NoError(t, err)

	_, err = m.RestoreBackup(info.Filename)
	require.NoError(t, err)

	// The store handle that existed before the restore must already
	// serve the restored data.
	patients, err := s.GetAllPatients()
	require.NoError(t, err)
	assert.Len(t, patients, 2)
}

func TestRestoreKeepsTargetAtRetentionLimit(t *testing.T) {
	m, cfg := newTestManager(t)
	m.keep = 1
	seedDatabase(t, cfg, 2)

	info, err := m.CreateBackup(KindManual)
	require.NoError(t, err)

	// The pre-restore snapshot fills the retention quota on its own;
	// the archive being restored must survive the prune.
	report, err := m.RestoreBackup(info.Filename)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Patients)
	assert.FileExists(t, filepath.Join(cfg.Backup.Dir, info.Filename))
}

func TestRestoreBackupUnknownArchive(t *testing.T) {
	m, cfg := newTestManager(t)
	seedDatabase(t, cfg, 1)

	_, err := m.RestoreBackup("clinic_backup_manual_20200101_000000.zip")
	assert.ErrorIs(t, err, ErrBackupNotFound)
}

func TestRestoreBackupCorruptArchive(t *testing.T) {
	m, cfg := newTestManager(t)
	seedDatabase(t, cfg, 1)

	name := "clinic_backup_manual_20240101_000000.zip"
	require.NoError(t, os.MkdirAll(cfg.Backup.Dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Backup.Dir, name), []byte("not a zip"), 0o644))

	_, err := m.RestoreBackup(name)
	assert.ErrorIs(t, err, ErrCorrupt)

	// The live store is untouched by the failed restore.
	patients, _, err := countCoreRows(cfg.Database.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), patients)
}

func TestAutoBackupIfNeeded(t *testing.T) {
	m, cfg := newTestManager(t)
	seedDatabase(t, cfg, 1)

	info, err := m.AutoBackupIfNeeded()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, KindAuto, info.Kind)

	again, err := m.AutoBackupIfNeeded()
	require.NoError(t, err)
	assert.Nil(t, again, "one auto backup per calendar day")

	backups, err := m.ListBackups()
	require.NoError(t, err)
	autos := 0
	for _, b := range backups {
		if b.Kind == KindAuto {
			autos++
		}
	}
	assert.Equal(t, 1, autos)
}

func TestPruneOldBackups(t *testing.T) {
	m, cfg := newTestManager(t)
	m.keep = 3
	seedDatabase(t, cfg, 1)
	require.NoError(t, os.MkdirAll(cfg.Backup.Dir, 0o755))

	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("clinic_backup_auto_2023010%d_120000.zip", i+1)
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Backup.Dir, name), []byte("old"), 0o644))
	}

	info, err := m.CreateBackup(KindManual)
	require.NoError(t, err)

	backups, err := m.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, info.Filename, backups[0].Filename, "the newest archive survives pruning")

	entries, err := os.ReadDir(cfg.Backup.Dir)
	require.NoError(t, err)
	archives := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == archiveExt {
			archives++
		}
	}
	assert.Equal(t, 3, archives, "pruned archives are removed from disk")
}

func TestListBackupsAdoptsUntrackedArchives(t *testing.T) {
	m, cfg := newTestManager(t)
	require.NoError(t, os.MkdirAll(cfg.Backup.Dir, 0o755))

	name := "clinic_backup_manual_20240315_143000.zip"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Backup.Dir, name), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Backup.Dir, "notes.txt"), []byte("x"), 0o644))

	backups, err := m.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, name, backups[0].Filename)
	assert.Equal(t, KindManual, backups[0].Kind)
	assert.Equal(t, 2024, backups[0].CreatedAt.Year())
	assert.NotEmpty(t, backups[0].ID)
}

func TestListBackupsRebuildsDamagedManifest(t *testing.T) {
	m, cfg := newTestManager(t)
	require.NoError(t, os.MkdirAll(cfg.Backup.Dir, 0o755))

	name := "clinic_backup_auto_20240315_143000.zip"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Backup.Dir, name), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Backup.Dir, manifestName), []byte("{broken"), 0o644))

	backups, err := m.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, name, backups[0].Filename)
}

func TestListBackupsDropsMissingFiles(t *testing.T) {
	m, cfg := newTestManager(t)
	seedDatabase(t, cfg, 1)

	info, err := m.CreateBackup(KindManual)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(cfg.Backup.Dir, info.Filename)))

	backups, err := m.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)
}
