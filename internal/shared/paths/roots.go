package paths

import (
	"os"
	"path/filepath"

	"github.com/pbs-admin/backend/internal/shared/errs"
)

// Roots holds the permitted directories for one installation.
type Roots struct {
	// Data is the application data root under the user's document area.
	Data string

	// Backups holds database snapshots, as a sibling of Data.
	Backups string

	// Scratch holds short-lived files under the OS temp area.
	Scratch string
}

// All returns the roots in a fixed order for Guard construction.
func (r Roots) All() []string {
	return []string{r.Data, r.Backups, r.Scratch}
}

// DefaultRoots derives the permitted roots from the user profile.
// The document area is <home>/Documents; its absence is a hard failure
// because the guard has no usable root without it.
func DefaultRoots(appName string) (Roots, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Roots{}, errs.Wrap(errs.NoDocumentsFolder, "roots", "", err)
	}

	base := filepath.Join(home, "Documents", appName)
	return Roots{
		Data:    filepath.Join(base, "data"),
		Backups: filepath.Join(base, "Backups"),
		Scratch: filepath.Join(os.TempDir(), appName),
	}, nil
}

// RootsUnder derives the permitted roots from an explicit base directory
// instead of the user profile, for tests and portable installs.
func RootsUnder(base, appName string) Roots {
	return Roots{
		Data:    filepath.Join(base, "data"),
		Backups: filepath.Join(base, "Backups"),
		Scratch: filepath.Join(os.TempDir(), appName),
	}
}

// Ensure creates every root directory. Called once at startup so that
// roots can always be canonicalized during validation.
func (r Roots) Ensure() error {
	for _, dir := range r.All() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.IOError, "roots.ensure", dir, err)
		}
	}
	return nil
}
