// Package paths confines all file access to a small set of permitted roots.
//
// Every file-touching operation in the backend resolves its target through
// Guard.Validate before doing I/O. Validation canonicalizes the path first
// (symlinks and ".." resolved) and only then checks containment, so a path
// that lexically looks inside a root cannot escape it on disk.
//
// # Permitted roots
//
//	<home>/Documents/<app>/data     (application data)
//	<home>/Documents/<app>/Backups  (database snapshots)
//	<os-temp>/<app>                 (scratch files)
//
// The root set is computed once at startup from the user profile and
// injected into the Guard, so the containment logic is testable against
// any directory layout.
//
// # Usage
//
//	roots, _ := paths.DefaultRoots("PBS_Admin")
//	guard := paths.NewGuard(roots.All()...)
//
//	p, err := guard.Validate(input, paths.IntentWrite)
//	if err != nil {
//	    return err // errs.AccessDenied, errs.InvalidPath, errs.NotFound
//	}
//	os.WriteFile(p, data, 0o644)
package paths
