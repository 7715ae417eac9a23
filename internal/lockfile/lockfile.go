// Package lockfile provides a non-blocking exclusive lock on a file.
//
// The lock guards the read-modify-write span of a command. A second
// process, or a second handle in the same process, fails immediately with
// ErrLockBusy instead of waiting.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

// Lock is a held exclusive lock.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock at path, creating the file if needed.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("%w: creating lock directory: %v", kerrors.ErrIO, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: opening lock file: %v", kerrors.ErrIO, err)
	}

	busy, err := tryLock(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: locking %s: %v", kerrors.ErrIO, path, err)
	}
	if busy {
		f.Close()
		return nil, fmt.Errorf("%w (%s)", kerrors.ErrLockBusy, path)
	}

	return &Lock{path: path, file: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unlock(l.file)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}
