package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository implementations.
var (
	// ErrCorrupt marks persisted data that cannot be decoded.
	ErrCorrupt = errors.New("store: corrupt record")
	// ErrLocked is returned when another process holds the data directory.
	ErrLocked = errors.New("store: data directory is locked by another process")
	// ErrBatchTooLarge is returned when a changeset exceeds what one
	// transaction can hold.
	ErrBatchTooLarge = errors.New("store: changeset too large for one transaction")
	// ErrUnknownDriver is returned for an unsupported storage driver name.
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// Corruptf wraps ErrCorrupt with context about the offending record.
func Corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
