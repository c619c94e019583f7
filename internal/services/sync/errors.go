package sync

// SyncError is a custom error type for sync-related errors
type SyncError string

// Error implements the error interface
func (e SyncError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrGameNotFound SyncError = "game not found"

	ErrNilConfig   SyncError = "config cannot be nil"
	ErrNilGameRepo SyncError = "game repository cannot be nil"
	ErrNilFeedRepo SyncError = "feed repository cannot be nil"
)
