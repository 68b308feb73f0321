package backend

// Error is the single normalized failure the adapters raise. Callers only
// ever see a display-ready message; no status code or error kind leaks past
// this boundary.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError wraps a display message in the normalized error type.
func NewError(message string) *Error {
	return &Error{Message: message}
}
