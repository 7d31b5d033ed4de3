package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbs-admin/backend/internal/logging"
	"github.com/pbs-admin/backend/internal/shared/errs"
)

const (
	artifactPrefix = "backup"
	artifactExt    = ".db"

	// safetySuffix names the transient pre-restore copy of the database.
	safetySuffix = ".pre-restore"

	// timestampLayout is fixed-width and zero-padded, so lexicographic
	// order over artifact names equals chronological order.
	timestampLayout = "2006-01-02-150405"
)

// artifactName matches the artifact naming convention exactly.
var artifactName = regexp.MustCompile(`^backup-\d{4}-\d{2}-\d{2}-\d{6}\.db$`)

// Artifact describes one database snapshot.
type Artifact struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// Manager creates, lists, deletes, and restores snapshots of the single
// database file. It never parses the database; it only copies bytes.
//
// Restore is the only stateful operation: a safety copy of the live
// database is taken before the overwrite, restored on failure, and
// deleted on success.
type Manager struct {
	dbPath string
	dir    string
	log    *logging.Logger

	// now and copy are swappable so tests can pin timestamps and inject
	// failures into individual copy steps.
	now  func() time.Time
	copy func(src, dst string) error
}

// NewManager creates a backup manager for the database at dbPath, storing
// artifacts under dir.
func NewManager(dbPath, dir string, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		dbPath: dbPath,
		dir:    dir,
		log:    log,
		now:    time.Now,
		copy:   copyFile,
	}
}

// DatabasePath returns the live database location.
func (m *Manager) DatabasePath() string { return m.dbPath }

// SafetyPath returns where the pre-restore copy is written.
func (m *Manager) SafetyPath() string { return m.dbPath + safetySuffix }

// ArtifactPath returns the location an artifact with the given name
// would have inside the backups directory. The name is not validated
// here; Restore and Delete reject anything that is not a real artifact.
func (m *Manager) ArtifactPath(name string) string {
	return filepath.Join(m.dir, name)
}

// Create snapshots the database into a new timestamped artifact. The copy
// lands in a temporary file first and is renamed into place, so a failed
// copy never leaves a partial artifact visible.
func (m *Manager) Create() (Artifact, error) {
	info, err := os.Stat(m.dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, errs.New(errs.SourceMissing, "backup.create", m.dbPath, "database file does not exist")
		}
		return Artifact{}, errs.Wrap(errs.IOError, "backup.create", m.dbPath, err)
	}
	if info.IsDir() {
		return Artifact{}, errs.New(errs.SourceMissing, "backup.create", m.dbPath, "database path is a directory")
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return Artifact{}, errs.Wrap(errs.IOError, "backup.create", m.dir, err)
	}

	name := fmt.Sprintf("%s-%s%s", artifactPrefix, m.now().Format(timestampLayout), artifactExt)
	dst := filepath.Join(m.dir, name)
	part := dst + ".part"

	if err := m.copy(m.dbPath, part); err != nil {
		os.Remove(part)
		return Artifact{}, errs.Wrap(errs.IOError, "backup.create", dst, err)
	}
	if err := os.Rename(part, dst); err != nil {
		os.Remove(part)
		return Artifact{}, errs.Wrap(errs.IOError, "backup.create", dst, err)
	}

	stat, err := os.Stat(dst)
	if err != nil {
		return Artifact{}, errs.Wrap(errs.IOError, "backup.create", dst, err)
	}

	m.log.Info("backup created", zap.String("artifact", dst), zap.Int64("size", stat.Size()))

	return Artifact{
		Name:    name,
		Path:    dst,
		Size:    stat.Size(),
		Created: stat.ModTime(),
	}, nil
}

// List enumerates the artifacts under the backups root, newest first by
// embedded timestamp. A missing directory is an empty list; an entry that
// cannot be inspected is skipped, but a directory that cannot be opened
// fails the whole call.
func (m *Manager) List() ([]Artifact, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Artifact{}, nil
		}
		return nil, errs.Wrap(errs.IOError, "backup.list", m.dir, err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !artifactName.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			m.log.Warn("skipping unreadable backup entry",
				zap.String("name", entry.Name()), zap.Error(err))
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    entry.Name(),
			Path:    filepath.Join(m.dir, entry.Name()),
			Size:    info.Size(),
			Created: info.ModTime(),
		})
	}

	// Fixed-width timestamps make name order chronological.
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name > artifacts[j].Name
	})

	return artifacts, nil
}

// Restore overwrites the live database with the named artifact.
//
// A safety copy of the database is taken first; if that copy fails the
// database is untouched and nothing proceeds. If the overwrite fails, the
// safety copy is rolled back over the database. The database therefore
// ends every call holding either its pre-restore content or the artifact
// content, except the unrecoverable double failure, which is surfaced
// with the safety copy location so a human can recover manually.
func (m *Manager) Restore(artifactPath string) error {
	base := filepath.Base(artifactPath)
	if !artifactName.MatchString(base) {
		return errs.New(errs.InvalidBackup, "backup.restore", artifactPath, "not a recognized backup artifact")
	}
	info, err := os.Stat(artifactPath)
	if err != nil || info.IsDir() {
		return errs.New(errs.InvalidBackup, "backup.restore", artifactPath, "backup artifact does not exist")
	}

	safety := m.SafetyPath()
	if err := m.copy(m.dbPath, safety); err != nil {
		return errs.Wrap(errs.BackupFailed, "restore.safety-copy", m.dbPath, err)
	}

	if err := m.copy(artifactPath, m.dbPath); err != nil {
		if rbErr := m.copy(safety, m.dbPath); rbErr != nil {
			m.log.Error("restore failed and rollback failed; manual recovery required",
				zap.String("artifact", artifactPath),
				zap.String("safety_copy", safety),
				zap.NamedError("overwrite_error", err),
				zap.NamedError("rollback_error", rbErr))
			return errs.New(errs.RestoreFailedUnrecoverable, "restore.rollback", m.dbPath,
				fmt.Sprintf("restore and rollback both failed; pre-restore copy preserved at %s", safety))
		}
		m.log.Warn("restore failed, database rolled back",
			zap.String("artifact", artifactPath), zap.Error(err))
		return errs.Wrap(errs.RestoreFailed, "restore.overwrite", artifactPath, err)
	}

	// Non-fatal cleanup: a safety copy that cannot be removed is logged,
	// never escalated.
	if err := os.Remove(safety); err != nil {
		m.log.Warn("could not remove pre-restore safety copy",
			zap.String("safety_copy", safety), zap.Error(err))
	}

	m.log.Info("database restored", zap.String("artifact", artifactPath))
	return nil
}

// Delete removes an artifact. The path must lie inside the backups root
// and match the artifact naming convention; anything else is refused
// without touching the filesystem.
func (m *Manager) Delete(artifactPath string) error {
	abs, err := filepath.Abs(artifactPath)
	if err != nil {
		return errs.Wrap(errs.InvalidPath, "backup.delete", artifactPath, err)
	}
	abs = filepath.Clean(abs)

	if !insideDir(m.dir, abs) {
		return errs.New(errs.AccessDenied, "backup.delete", artifactPath, "path is outside the backups directory")
	}
	if !artifactName.MatchString(filepath.Base(abs)) {
		return errs.New(errs.AccessDenied, "backup.delete", artifactPath, "not a recognized backup artifact")
	}

	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return errs.New(errs.NotFound, "backup.delete", artifactPath, "backup artifact does not exist")
		}
		return errs.Wrap(errs.IOError, "backup.delete", artifactPath, err)
	}

	m.log.Info("backup deleted", zap.String("artifact", abs))
	return nil
}

// insideDir reports whether p is a strict descendant of dir, compared on
// path components.
func insideDir(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyFile copies src to dst byte-for-byte, fsyncing before close so a
// reported success means the bytes are on disk.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
