// Package fsutil holds small filesystem helpers shared by the installer.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileExclusive writes data to a temp file next to filename and links it
// into place. It never replaces an existing filename: when one appears before the
// link, the error wraps fs.ErrExist. Readers never observe a partial file.
func WriteFileExclusive(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", filename, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file for %s: %w", filename, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file for %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", filename, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file for %s: %w", filename, err)
	}
	if err := os.Link(tmpName, filename); err != nil {
		return fmt.Errorf("link temp file to %s: %w", filename, err)
	}
	return nil
}
