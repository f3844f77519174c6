package api

// API limits and constants.
const (
	// MaxUploadSize is the default limit for CSV uploads (10 MB).
	MaxUploadSize = 10 << 20

	// MaxRowsPerRequest caps the rows of one import request.
	MaxRowsPerRequest = 50000

	// AdminKeyHeader carries the admin key on write requests.
	AdminKeyHeader = "X-Admin-Key"
)

// Write rate limit defaults.
const (
	DefaultWriteRate  = 2.0
	DefaultWriteBurst = 10
)
