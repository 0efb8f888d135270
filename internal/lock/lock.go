// Package lock serializes sitesctl runs against one host root with an advisory
// flock on a lock file.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

// FileName is the lock file created in the host root.
const FileName = ".sitesctl.lock"

// DefaultTimeout bounds how long a run waits for another run to finish.
const DefaultTimeout = 30 * time.Second

var flockFn = unix.Flock
var lockSleep = time.Sleep

var lockPollEvery = 100 * time.Millisecond

// Path returns the lock file path for root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// FileLock is a held exclusive lock.
type FileLock struct {
	file *os.File
}

// WithFileLock acquires the lock at path, runs fn, and releases the lock.
func WithFileLock(path string, timeout time.Duration, fn func() error) error {
	lock, err := Acquire(path, timeout)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release()
	}()
	return fn()
}

// Acquire opens or creates path and takes an exclusive lock, polling until
// timeout elapses. A non-positive timeout uses DefaultTimeout.
func Acquire(path string, timeout time.Duration) (*FileLock, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.LockOpenFmt, path, err)
	}
	if err := lockFile(file, timeout); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf(messages.LockAcquireFmt, path, err)
	}
	return &FileLock{file: file}, nil
}

// Release unlocks and closes the lock file.
func (l *FileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := flockFn(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func lockFile(file *os.File, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.LockTimeoutFmt, timeout)
		}
		lockSleep(lockPollEvery)
	}
}
