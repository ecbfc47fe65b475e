// Package timeout defines centralized timeout constants for gateway operations.
package timeout

import "time"

// Gateway timeout constants.
const (
	// ChatTimeout is the timeout for a single chat model completion.
	ChatTimeout = 2 * time.Minute

	// CalendarTimeout is the timeout for a single calendar read or write.
	CalendarTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful HTTP server shutdown.
	ShutdownTimeout = 10 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
