// Package root locates the host application root from a working directory.
package root

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kongondo/SitesManager-sub001/internal/config"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

// SiteDir is the host's site directory; its parent is the host root.
const SiteDir = "site"

// FindHostRoot walks up from start to the first directory holding sitesctl.toml
// or a site directory.
func FindHostRoot(start string) (string, bool, error) {
	if strings.TrimSpace(start) == "" {
		return "", false, errors.New(messages.RootStartRequired)
	}
	dir := filepath.Clean(start)
	for {
		found, err := isHostRoot(dir)
		if err != nil {
			return "", false, err
		}
		if found {
			return dir, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Resolve returns the host root above start, or start itself when none is found.
func Resolve(start string) (string, error) {
	found, ok, err := FindHostRoot(start)
	if err != nil {
		return "", err
	}
	if !ok {
		return filepath.Clean(start), nil
	}
	return found, nil
}

func isHostRoot(dir string) (bool, error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return true, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf(messages.RootStatFmt, filepath.Join(dir, config.FileName), err)
	}
	site := filepath.Join(dir, SiteDir)
	info, err := os.Stat(site)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf(messages.RootStatFmt, site, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf(messages.RootSiteNotDirFmt, site)
	}
	return true, nil
}
