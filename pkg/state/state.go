package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the canonical runtime folder layout under the DB path.
type Paths struct {
	Store     string
	State     string
	Audit     string
	Redaction string
	Tmp       string
}

// PathsVar is populated by EnsureStateDirs during startup.
var PathsVar Paths

// EnsureStateDirs ensures the canonical runtime folder layout exists under
// the provided DB path. It verifies paths are not symlinks, have
// restrictive permissions and are writable by the process.
func EnsureStateDirs(dbPath string) error {
	p := Paths{
		Store:     filepath.Join(dbPath, "store"),
		State:     filepath.Join(dbPath, "state"),
		Audit:     filepath.Join(dbPath, "state", "audit"),
		Redaction: filepath.Join(dbPath, "state", "redaction"),
		Tmp:       filepath.Join(dbPath, "state", "tmp"),
	}

	for _, dir := range []string{p.Store, p.Audit, p.Redaction, p.Tmp} {
		if err := os.MkdirAll(filepath.Dir(dir), 0o700); err != nil {
			return fmt.Errorf("cannot create parent for %s: %w", dir, err)
		}
		if fi, err := os.Lstat(dir); err == nil {
			if fi.Mode()&os.ModeSymlink != 0 {
				return fmt.Errorf("path is a symlink: %s", dir)
			}
			if !fi.IsDir() {
				return fmt.Errorf("path exists and is not a directory: %s", dir)
			}
			if fi.Mode().Perm()&0o022 != 0 {
				return fmt.Errorf("path has permissive mode (group/other write): %s", dir)
			}
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("cannot create path %s: %w", dir, err)
		}

		// writability check: create and remove a temp file
		tmp, err := os.CreateTemp(dir, ".validate-*")
		if err != nil {
			return fmt.Errorf("path not writable: %s: %w", dir, err)
		}
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	PathsVar = p
	return nil
}
