package install

import (
	"os"

	"github.com/kongondo/SitesManager-sub001/internal/fsutil"
)

// System abstracts the filesystem operations the installer and cleanup perform
// in the host root. It is package-local so tests can inject faults per path.
type System interface {
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	MkdirAll(path string, perm os.FileMode) error
	Remove(name string) error
	// WriteFileExclusive creates filename with data. It fails with an error
	// wrapping fs.ErrExist instead of replacing an existing file.
	WriteFileExclusive(filename string, data []byte, perm os.FileMode) error
}

// RealSystem implements System using the OS filesystem.
type RealSystem struct{}

// Stat returns a FileInfo describing the named file.
func (RealSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads the named file and returns the contents.
func (RealSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (RealSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove removes the named file.
func (RealSystem) Remove(name string) error {
	return os.Remove(name)
}

// WriteFileExclusive writes data to a temp file and links it into place.
func (RealSystem) WriteFileExclusive(filename string, data []byte, perm os.FileMode) error {
	return fsutil.WriteFileExclusive(filename, data, perm)
}
