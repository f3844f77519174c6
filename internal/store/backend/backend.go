// Package backend opens the configured catalog repository under an exclusive
// data directory lock.
package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/listenupapp/shelfmatch/internal/config"
	"github.com/listenupapp/shelfmatch/internal/store"
	"github.com/listenupapp/shelfmatch/internal/store/badgerdb"
	"github.com/listenupapp/shelfmatch/internal/store/sqlite"
)

// Handle is an open repository together with the lock that guards it.
type Handle struct {
	store.Repository
	lock   *store.DirLock
	driver string
	path   string

	closeOnce sync.Once
	closeErr  error
}

// Open locks cfg.DataDir and opens the repository for cfg.Driver.
// The lock is released again if the repository cannot be opened.
func Open(cfg config.StorageConfig, logger *slog.Logger) (*Handle, error) {
	if cfg.Driver != config.DriverSQLite && cfg.Driver != config.DriverBadger {
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownDriver, cfg.Driver)
	}

	lock, err := store.AcquireLock(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	path := cfg.DatabasePath()
	var repo store.Repository
	switch cfg.Driver {
	case config.DriverBadger:
		repo, err = badgerdb.Open(path, logger)
	default:
		repo, err = sqlite.Open(path, logger)
	}
	if err != nil {
		return nil, errors.Join(err, lock.Release())
	}

	return &Handle{Repository: repo, lock: lock, driver: cfg.Driver, path: path}, nil
}

// Driver returns the storage driver name.
func (h *Handle) Driver() string {
	return h.driver
}

// Path returns where the repository keeps its data.
func (h *Handle) Path() string {
	return h.path
}

// Close closes the repository and releases the directory lock.
// Later calls return the result of the first.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closeErr = errors.Join(h.Repository.Close(), h.lock.Release())
	})
	return h.closeErr
}
