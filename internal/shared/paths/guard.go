package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pbs-admin/backend/internal/shared/errs"
)

// Intent distinguishes targets that must already exist from targets
// that may be created by the operation.
type Intent int

const (
	// IntentRead requires the target to exist.
	IntentRead Intent = iota

	// IntentWrite allows a missing target as long as its parent
	// directory exists.
	IntentWrite
)

func (i Intent) String() string {
	if i == IntentWrite {
		return "write"
	}
	return "read"
}

// Guard decides whether a caller-supplied path lies inside the permitted
// roots. It is stateless; every call re-resolves against the filesystem.
type Guard struct {
	roots []string
}

// NewGuard creates a guard over the given permitted roots. Roots are
// stored in absolute cleaned form; canonicalization happens per call so
// symlinked roots are handled correctly.
func NewGuard(roots ...string) *Guard {
	g := &Guard{roots: make([]string, 0, len(roots))}
	for _, r := range roots {
		if r == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		g.roots = append(g.roots, filepath.Clean(abs))
	}
	return g
}

// Roots returns a copy of the configured roots.
func (g *Guard) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Validate canonicalizes path and accepts it only if the canonical form
// is equal to, or a descendant of, a permitted root. The returned path is
// the canonical absolute form to use for the actual I/O call.
//
// Canonicalization happens before the containment check: a path with ".."
// segments or symlink hops can lexically appear inside a root while
// resolving outside it, so the lexical form is never trusted. Containment
// also runs before the read-existence verdict: a missing target outside
// the roots is refused, never reported missing, so the error code leaks
// nothing about files beyond the roots.
func (g *Guard) Validate(path string, intent Intent) (string, error) {
	op := "validate." + intent.String()

	if strings.TrimSpace(path) == "" {
		return "", errs.New(errs.InvalidPath, op, path, "empty path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, op, path, err)
	}

	missing := false
	candidate, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", errs.Wrap(errs.InvalidPath, op, path, err)
		}
		missing = true
		if intent == IntentWrite {
			// Write target that does not exist yet: canonicalize the
			// parent and rejoin the filename.
			parent, errp := filepath.EvalSymlinks(filepath.Dir(abs))
			if errp != nil {
				return "", errs.New(errs.InvalidPath, op, path, "parent directory does not exist")
			}
			candidate = filepath.Join(parent, filepath.Base(abs))
		} else {
			// Missing read target: canonicalize the deepest existing
			// ancestor so containment still decides first.
			candidate = canonicalizeDeepest(abs)
		}
	}

	if !g.contained(candidate) {
		return "", errs.New(errs.AccessDenied, op, path, "path is outside the permitted roots")
	}

	if missing && intent == IntentRead {
		return "", errs.New(errs.NotFound, op, path, "target does not exist")
	}

	return candidate, nil
}

// ValidateCreate accepts a directory-creation target whose missing tail
// may span several components, unlike IntentWrite, which requires the
// immediate parent to exist. The deepest existing ancestor is
// canonicalized and the missing remainder rejoined before the containment
// check. The returned path is the canonical form to pass to MkdirAll.
func (g *Guard) ValidateCreate(path string) (string, error) {
	const op = "validate.create"

	if strings.TrimSpace(path) == "" {
		return "", errs.New(errs.InvalidPath, op, path, "empty path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, op, path, err)
	}

	candidate := canonicalizeDeepest(abs)
	if !g.contained(candidate) {
		return "", errs.New(errs.AccessDenied, op, path, "path is outside the permitted roots")
	}

	return candidate, nil
}

// contained reports whether candidate lies inside any permitted root.
// candidate must already be canonical.
func (g *Guard) contained(candidate string) bool {
	for _, root := range g.roots {
		canon, err := filepath.EvalSymlinks(root)
		if err != nil {
			// A root that cannot be canonicalized is never compared in
			// non-canonical form; it simply grants nothing. Startup
			// creates all roots, so this only occurs on broken installs.
			continue
		}
		if isDescendant(canon, candidate) {
			return true
		}
	}
	return false
}

// canonicalizeDeepest resolves the deepest existing ancestor of abs and
// rejoins the missing remainder. abs is already cleaned, so the remainder
// carries no ".." segments.
func canonicalizeDeepest(abs string) string {
	dir := abs
	rest := ""
	for {
		canon, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(canon, rest)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
	}
}

// isDescendant reports whether p equals root or lies below it. The test
// runs on path components, not string prefixes, so /data2 never matches
// a root of /data.
func isDescendant(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
