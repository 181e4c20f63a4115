package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	archivePrefix   = "clinic_backup_"
	archiveExt      = ".zip"
	timestampLayout = "20060102_150405"
	manifestName    = "manifest.json"
)

// BackupInfo describes one archive. The manifest stores these fields
// explicitly so listings do not have to re-derive them from filename
// conventions on every call.
type BackupInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Kind       Kind      `json:"kind"`
	CreatedAt  time.Time `json:"createdAt"`
	SizeBytes  int64     `json:"sizeBytes"`
	AppVersion string    `json:"appVersion"`
}

type manifest struct {
	Entries []BackupInfo `json:"entries"`
}

func (m *Manager) manifestPath() string {
	return filepath.Join(m.dir, manifestName)
}

func (m *Manager) loadManifest() (*manifest, error) {
	data, err := os.ReadFile(m.manifestPath())
	if os.IsNotExist(err) {
		return &manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup manifest: %w", err)
	}
	var mf manifest
	if err := json.Unmarshal(data, &mf); err != nil {
		// A damaged manifest is rebuilt from the directory contents.
		m.log.Warn().Err(err).Msg("backup manifest unreadable, rebuilding")
		return &manifest{}, nil
	}
	return &mf, nil
}

func (m *Manager) saveManifest(mf *manifest) error {
	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup manifest: %w", err)
	}
	if err := os.WriteFile(m.manifestPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing backup manifest: %w", err)
	}
	return nil
}

// archiveName builds the load-bearing filename convention
// clinic_backup_{kind}_{YYYYMMDD}_{HHMMSS}.zip.
func archiveName(kind Kind, at time.Time) string {
	return fmt.Sprintf("%s%s_%s%s", archivePrefix, kind, at.Format(timestampLayout), archiveExt)
}

// parseArchiveName recovers kind and creation time from an archive
// filename. Kinds may themselves contain underscores (pre_restore), so
// the timestamp is taken from the right.
func parseArchiveName(filename string) (Kind, time.Time, error) {
	if !strings.HasPrefix(filename, archivePrefix) || !strings.HasSuffix(filename, archiveExt) {
		return "", time.Time{}, fmt.Errorf("not a backup archive: %s", filename)
	}
	core := strings.TrimSuffix(strings.TrimPrefix(filename, archivePrefix), archiveExt)
	parts := strings.Split(core, "_")
	if len(parts) < 3 {
		return "", time.Time{}, fmt.Errorf("malformed backup name: %s", filename)
	}
	stamp := parts[len(parts)-2] + "_" + parts[len(parts)-1]
	created, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed backup timestamp in %s: %w", filename, err)
	}
	kind := Kind(strings.Join(parts[:len(parts)-2], "_"))
	return kind, created, nil
}

// ListBackups enumerates archives newest first. The manifest is the
// source of truth; it is reconciled against the directory so entries
// for pruned files disappear and untracked archives are adopted by
// parsing their filenames.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	if err := m.ensureDir(); err != nil {
		return nil, err
	}
	mf, err := m.loadManifest()
	if err != nil {
		return nil, err
	}

	present := map[string]os.FileInfo{}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		present[name] = info
	}

	tracked := map[string]bool{}
	var reconciled []BackupInfo
	for _, e := range mf.Entries {
		if _, ok := present[e.Filename]; !ok {
			continue
		}
		tracked[e.Filename] = true
		reconciled = append(reconciled, e)
	}
	for name, info := range present {
		if tracked[name] {
			continue
		}
		kind, created, err := parseArchiveName(name)
		if err != nil {
			m.log.Warn().Str("file", name).Err(err).Msg("skipping unrecognized archive")
			continue
		}
		reconciled = append(reconciled, BackupInfo{
			ID:        uuid.New().String(),
			Filename:  name,
			Kind:      kind,
			CreatedAt: created,
			SizeBytes: info.Size(),
		})
	}

	sort.Slice(reconciled, func(i, j int) bool {
		return reconciled[i].CreatedAt.After(reconciled[j].CreatedAt)
	})

	mf.Entries = reconciled
	if err := m.saveManifest(mf); err != nil {
		return nil, err
	}
	return reconciled, nil
}
