package errors

import (
	"fmt"
)

// ErrNotConnected is returned when a board filesystem operation is attempted
// on a session that hasn't connected yet (or has already disconnected).
var ErrNotConnected = New("not connected to a board, call Connect first")

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}
