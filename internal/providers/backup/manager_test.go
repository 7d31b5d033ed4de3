package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbs-admin/backend/internal/logging"
	"github.com/pbs-admin/backend/internal/shared/errs"
)

const dbContent = "live database bytes"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	base := t.TempDir()
	dbPath := filepath.Join(base, "pbs_admin.db")
	require.NoError(t, os.WriteFile(dbPath, []byte(dbContent), 0o644))

	m := NewManager(dbPath, filepath.Join(base, "Backups"), logging.NewNop())
	m.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)
	}
	return m
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCreateProducesArtifact(t *testing.T) {
	m := newTestManager(t)

	artifact, err := m.Create()
	require.NoError(t, err)

	assert.Equal(t, "backup-2024-03-15-103000.db", artifact.Name)
	assert.Equal(t, dbContent, readFile(t, artifact.Path))
	assert.Equal(t, int64(len(dbContent)), artifact.Size)
	assert.True(t, artifactName.MatchString(artifact.Name))
}

func TestCreateSourceMissing(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.Remove(m.DatabasePath()))

	_, err := m.Create()
	require.Error(t, err)
	assert.Equal(t, errs.SourceMissing, errs.CodeOf(err))
}

func TestCreateLeavesNoPartialArtifact(t *testing.T) {
	m := newTestManager(t)
	m.copy = func(src, dst string) error {
		// Simulate a copy that dies midway.
		_ = os.WriteFile(dst, []byte("partial"), 0o644)
		return errors.New("disk full")
	}

	_, err := m.Create()
	require.Error(t, err)
	assert.Equal(t, errs.IOError, errs.CodeOf(err))

	artifacts, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, artifacts)

	entries, err := os.ReadDir(m.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial file should remain")
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	m := newTestManager(t)

	artifact, err := m.Create()
	require.NoError(t, err)

	// Mutate the live database, then restore the snapshot.
	require.NoError(t, os.WriteFile(m.DatabasePath(), []byte("mutated"), 0o644))
	require.NoError(t, m.Restore(artifact.Path))

	assert.Equal(t, dbContent, readFile(t, m.DatabasePath()))

	_, err = os.Stat(m.SafetyPath())
	assert.True(t, os.IsNotExist(err), "safety copy should be removed after a successful restore")
}

func TestListNewestFirst(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.dir, 0o755))

	older := filepath.Join(m.dir, "backup-2024-01-01-000000.db")
	newer := filepath.Join(m.dir, "backup-2024-06-01-000000.db")
	stray := filepath.Join(m.dir, "notes.txt")
	require.NoError(t, os.WriteFile(older, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(stray, []byte("c"), 0o644))

	artifacts, err := m.List()
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "backup-2024-06-01-000000.db", artifacts[0].Name)
	assert.Equal(t, "backup-2024-01-01-000000.db", artifacts[1].Name)
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	m := newTestManager(t)

	artifacts, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestRestoreRejectsUnrecognizedArtifacts(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.dir, 0o755))

	// Wrong naming convention.
	bad := filepath.Join(m.dir, "dump.db")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	err := m.Restore(bad)
	require.Error(t, err)
	assert.Equal(t, errs.InvalidBackup, errs.CodeOf(err))

	// Right name, no file.
	err = m.Restore(filepath.Join(m.dir, "backup-2024-01-01-000000.db"))
	require.Error(t, err)
	assert.Equal(t, errs.InvalidBackup, errs.CodeOf(err))

	assert.Equal(t, dbContent, readFile(t, m.DatabasePath()))
}

func TestRestoreAbortsWhenSafetyCopyFails(t *testing.T) {
	m := newTestManager(t)
	artifact, err := m.Create()
	require.NoError(t, err)

	m.copy = func(src, dst string) error {
		return errors.New("safety copy failed")
	}

	err = m.Restore(artifact.Path)
	require.Error(t, err)
	assert.Equal(t, errs.BackupFailed, errs.CodeOf(err))
	assert.Equal(t, dbContent, readFile(t, m.DatabasePath()))
}

func TestRestoreRollsBackOnOverwriteFailure(t *testing.T) {
	m := newTestManager(t)
	artifact, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(m.DatabasePath(), []byte("current state"), 0o644))

	realCopy := m.copy
	m.copy = func(src, dst string) error {
		if src == artifact.Path {
			return errors.New("overwrite failed")
		}
		return realCopy(src, dst)
	}

	err = m.Restore(artifact.Path)
	require.Error(t, err)
	assert.Equal(t, errs.RestoreFailed, errs.CodeOf(err))

	// The rollback preserved the pre-restore content byte for byte.
	assert.Equal(t, "current state", readFile(t, m.DatabasePath()))
}

func TestRestoreUnrecoverableKeepsSafetyCopy(t *testing.T) {
	m := newTestManager(t)
	artifact, err := m.Create()
	require.NoError(t, err)

	realCopy := m.copy
	safety := m.SafetyPath()
	m.copy = func(src, dst string) error {
		if src == artifact.Path {
			return errors.New("overwrite failed")
		}
		if src == safety {
			return errors.New("rollback failed")
		}
		return realCopy(src, dst)
	}

	err = m.Restore(artifact.Path)
	require.Error(t, err)
	assert.Equal(t, errs.RestoreFailedUnrecoverable, errs.CodeOf(err))
	assert.Contains(t, err.Error(), safety, "error should name the safety copy location")

	assert.Equal(t, dbContent, readFile(t, safety), "safety copy must survive for manual recovery")
}

func TestDeleteRefusesPathsOutsideBackupsRoot(t *testing.T) {
	m := newTestManager(t)

	outside := filepath.Join(filepath.Dir(m.DatabasePath()), "backup-2024-01-01-000000.db")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	err := m.Delete(outside)
	require.Error(t, err)
	assert.Equal(t, errs.AccessDenied, errs.CodeOf(err))

	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr, "refused delete must not mutate the filesystem")
}

func TestDeleteRefusesNonArtifactNames(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.dir, 0o755))

	stray := filepath.Join(m.dir, "pbs_admin.db")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0o644))

	err := m.Delete(stray)
	require.Error(t, err)
	assert.Equal(t, errs.AccessDenied, errs.CodeOf(err))

	_, statErr := os.Stat(stray)
	assert.NoError(t, statErr)
}

func TestDeleteRemovesArtifact(t *testing.T) {
	m := newTestManager(t)
	artifact, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.Delete(artifact.Path))

	_, statErr := os.Stat(artifact.Path)
	assert.True(t, os.IsNotExist(statErr))
}
