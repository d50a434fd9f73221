package notion

import "fmt"

// RemoteError is a failed API call. Match with errors.As.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("notion api: status %d: %s", e.StatusCode, e.Message)
}

// Transient reports whether the call may succeed if repeated soon:
// rate limiting or a server-side failure.
func (e *RemoteError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
