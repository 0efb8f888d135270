// Package templates exposes the files bundled with the modules and copied into
// the host application root at install time.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed files
var bundled embed.FS

// FS returns the bundled files rooted at the files directory.
func FS() fs.FS {
	sub, err := fs.Sub(bundled, "files")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}

// Read returns the content of a bundled file by its name.
func Read(name string) ([]byte, error) {
	return fs.ReadFile(FS(), name)
}
