package watcher

import "time"

// Event reports a file in the watched directory that has stopped changing.
type Event struct {
	// Path is the file path.
	Path string

	// Size is the file size in bytes once settled.
	Size int64

	// ModTime is the file's last modification time once settled.
	ModTime time.Time
}
