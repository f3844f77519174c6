package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the name of the lock file created in the data directory.
const LockFileName = "shelfmatch.lock"

// DirLock guards a data directory against a second server process.
type DirLock struct {
	lock *flock.Flock
	path string
}

// AcquireLock takes an exclusive, non-blocking lock on dir.
// It returns ErrLocked when another process holds it.
func AcquireLock(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, LockFileName)
	l := flock.New(path)

	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &DirLock{lock: l, path: path}, nil
}

// Path returns the lock file path.
func (d *DirLock) Path() string {
	return d.path
}

// Release unlocks the directory.
func (d *DirLock) Release() error {
	return d.lock.Unlock()
}
