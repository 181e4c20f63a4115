package backup

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-app-server/internal/config"
)

// Kind classifies why an archive was taken.
type Kind string

const (
	KindManual     Kind = "manual"
	KindAuto       Kind = "auto"
	KindPreRestore Kind = "pre_restore"
)

// Failure taxonomy for backup operations.
var (
	ErrDatabaseMissing = errors.New("database file not found")
	ErrBackupNotFound  = errors.New("backup file not found")
	ErrCorrupt         = errors.New("backup file is corrupted")
)

// archiveMetadata is the JSON document bundled into every archive.
type archiveMetadata struct {
	BackupDate     string `json:"backup_date"`
	BackupType     string `json:"backup_type"`
	OriginalDBPath string `json:"original_db_path"`
	BackupSize     int64  `json:"backup_size"`
	AppVersion     string `json:"app_version"`
}

// Manager snapshots and restores the single store file. It operates on
// the file directly and must not run concurrently with a store write;
// the caller serializes backup work against record mutations.
type Manager struct {
	dbPath  string
	dir     string
	keep    int
	version string
	reopen  func() error
	log     zerolog.Logger
}

// NewManager creates a backup manager from configuration.
func NewManager(cfg *config.Config, log zerolog.Logger) *Manager {
	keep := cfg.Backup.KeepCount
	if keep <= 0 {
		keep = 10
	}
	return &Manager{
		dbPath:  cfg.Database.Path,
		dir:     cfg.Backup.Dir,
		keep:    keep,
		version: cfg.AppVersion,
		log:     log,
	}
}

// OnRestore registers a hook invoked after a restore has replaced the
// store file. The server uses it to drop pooled database connections
// that still point at the old file.
func (m *Manager) OnRestore(reopen func() error) {
	m.reopen = reopen
}

func (m *Manager) ensureDir() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	return nil
}

// CreateBackup archives the store file together with a metadata
// document into a single compressed container, then prunes the
// kind-independent pool down to the retention count.
func (m *Manager) CreateBackup(kind Kind) (*BackupInfo, error) {
	return m.createBackup(kind, "")
}

// createBackup does the work of CreateBackup. keepFile names an
// archive the retention prune must not remove, used while that archive
// is being restored.
func (m *Manager) createBackup(kind Kind, keepFile string) (*BackupInfo, error) {
	if err := m.ensureDir(); err != nil {
		return nil, err
	}

	dbInfo, err := os.Stat(m.dbPath)
	if os.IsNotExist(err) {
		return nil, ErrDatabaseMissing
	}
	if err != nil {
		return nil, fmt.Errorf("checking database file: %w", err)
	}

	// Archive names resolve to the second. Exclusive create detects a
	// name already taken and bumps the timestamp instead of truncating
	// the existing archive.
	now := time.Now()
	var out *os.File
	var filename string
	for attempt := 0; ; attempt++ {
		filename = archiveName(kind, now)
		out, err = os.OpenFile(filepath.Join(m.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating archive: %w", err)
		}
		if attempt >= 60 {
			return nil, fmt.Errorf("creating archive: no free name for %s", filename)
		}
		now = now.Add(time.Second)
	}
	base := strings.TrimSuffix(filename, archiveExt)
	archivePath := filepath.Join(m.dir, filename)

	metadata := archiveMetadata{
		BackupDate:     now.Format(time.RFC3339),
		BackupType:     string(kind),
		OriginalDBPath: m.dbPath,
		BackupSize:     dbInfo.Size(),
		AppVersion:     m.version,
	}

	if err := m.writeArchive(out, base, metadata); err != nil {
		os.Remove(archivePath)
		return nil, err
	}

	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("checking archive: %w", err)
	}

	info := BackupInfo{
		ID:         uuid.New().String(),
		Filename:   filename,
		Kind:       kind,
		CreatedAt:  now,
		SizeBytes:  archiveInfo.Size(),
		AppVersion: m.version,
	}

	mf, err := m.loadManifest()
	if err != nil {
		return nil, err
	}
	mf.Entries = append([]BackupInfo{info}, mf.Entries...)
	if err := m.saveManifest(mf); err != nil {
		return nil, err
	}

	if err := m.pruneOldBackups(keepFile); err != nil {
		m.log.Warn().Err(err).Msg("backup pruning failed")
	}

	m.log.Info().Str("file", filename).Str("kind", string(kind)).
		Int64("bytes", info.SizeBytes).Msg("backup created")
	return &info, nil
}

func (m *Manager) writeArchive(out *os.File, base string, metadata archiveMetadata) error {
	defer out.Close()

	zw := zip.NewWriter(out)

	dbEntry, err := zw.Create(base + ".db")
	if err != nil {
		return fmt.Errorf("creating archive entry: %w", err)
	}
	src, err := os.Open(m.dbPath)
	if err != nil {
		return fmt.Errorf("opening database file: %w", err)
	}
	_, copyErr := io.Copy(dbEntry, src)
	src.Close()
	if copyErr != nil {
		return fmt.Errorf("copying database into archive: %w", copyErr)
	}

	metaEntry, err := zw.Create(base + "_metadata.json")
	if err != nil {
		return fmt.Errorf("creating metadata entry: %w", err)
	}
	metaBytes, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if _, err := metaEntry.Write(metaBytes); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// pruneOldBackups keeps only the most recent archives across all
// kinds; older ones are removed along with their manifest entries.
// keepFile, when set, is exempt even if it falls past the retention
// cut.
func (m *Manager) pruneOldBackups(keepFile string) error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) <= m.keep {
		return nil
	}
	for _, old := range backups[m.keep:] {
		if old.Filename == keepFile {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, old.Filename)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing old backup %s: %w", old.Filename, err)
		}
		m.log.Info().Str("file", old.Filename).Msg("old backup pruned")
	}
	// Reconciliation drops the removed files from the manifest.
	_, err = m.ListBackups()
	return err
}

// RestoreReport describes a completed restore.
type RestoreReport struct {
	Patients          int64  `json:"patients"`
	Visits            int64  `json:"visits"`
	PreRestoreArchive string `json:"preRestoreArchive"`
}

// RestoreBackup replaces the live store file with the archived copy.
// The current state is snapshotted first as a pre_restore archive so a
// bad restore is itself recoverable, and the archived database must
// pass a row-count sanity check before it replaces anything.
func (m *Manager) RestoreBackup(filename string) (*RestoreReport, error) {
	target := filepath.Base(filename)
	archivePath := filepath.Join(m.dir, target)
	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		return nil, ErrBackupNotFound
	}

	// The target is exempt from the snapshot's retention prune so
	// restoring the oldest archive at the limit cannot delete it.
	safety, err := m.createBackup(KindPreRestore, target)
	if err != nil {
		return nil, fmt.Errorf("creating pre-restore backup: %w", err)
	}

	tempDir, err := os.MkdirTemp(m.dir, "restore-")
	if err != nil {
		return nil, fmt.Errorf("creating restore workspace: %w", err)
	}
	defer os.RemoveAll(tempDir)

	dbFile, err := extractArchive(archivePath, tempDir)
	if err != nil {
		return nil, err
	}
	if dbFile == "" {
		return nil, fmt.Errorf("%w: no database file found in archive", ErrCorrupt)
	}

	patients, visits, err := countCoreRows(dbFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if err := replaceFile(dbFile, m.dbPath); err != nil {
		return nil, fmt.Errorf("replacing database file: %w", err)
	}
	if m.reopen != nil {
		if err := m.reopen(); err != nil {
			return nil, fmt.Errorf("reopening database after restore: %w", err)
		}
	}

	m.log.Info().Str("file", filename).Int64("patients", patients).
		Int64("visits", visits).Msg("database restored")
	return &RestoreReport{
		Patients:          patients,
		Visits:            visits,
		PreRestoreArchive: safety.Filename,
	}, nil
}

// extractArchive unpacks the archive's file entries into dir and
// returns the path of the contained database file, if any. Entry names
// are flattened to their base name to keep extraction inside dir.
func extractArchive(archivePath, dir string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer reader.Close()

	var dbFile string
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(dir, filepath.Base(entry.Name))
		in, err := entry.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		out, err := os.Create(target)
		if err != nil {
			in.Close()
			return "", fmt.Errorf("extracting archive: %w", err)
		}
		_, copyErr := io.Copy(out, in)
		in.Close()
		out.Close()
		if copyErr != nil {
			return "", fmt.Errorf("extracting archive: %w", copyErr)
		}
		if strings.HasSuffix(target, ".db") {
			dbFile = target
		}
	}
	return dbFile, nil
}

// replaceFile swaps dst with src atomically via a sibling temp file.
func replaceFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp := dst + ".restore-tmp"
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	out, err := os.Create(tmp)
	if err != nil {
		in.Close()
		return err
	}
	_, copyErr := io.Copy(out, in)
	in.Close()
	if err := out.Close(); err != nil && copyErr == nil {
		copyErr = err
	}
	if copyErr != nil {
		os.Remove(tmp)
		return copyErr
	}
	return os.Rename(tmp, dst)
}

// AutoBackupIfNeeded creates an auto archive unless one already exists
// for the current calendar date. It returns nil when no backup was
// needed.
func (m *Manager) AutoBackupIfNeeded() (*BackupInfo, error) {
	backups, err := m.ListBackups()
	if err != nil {
		return nil, err
	}

	today := time.Now()
	for _, b := range backups {
		if b.Kind != KindAuto {
			continue
		}
		if sameDay(b.CreatedAt, today) {
			return nil, nil
		}
	}
	return m.CreateBackup(KindAuto)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
