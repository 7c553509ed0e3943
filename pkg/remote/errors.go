package remote

import (
	"errors"
	"fmt"
)

// ErrAlreadyExists is the root cause of an IOError reported by the board
// when creating a path that already exists.
var ErrAlreadyExists = errors.New("already exists")

// IOError represents a failed filesystem operation on the board.
type IOError struct {
	// Op is the operation that failed ("put", "mkdir", "rm", "close").
	Op string

	// Path is the remote path the operation was issued against.
	Path string

	// Err is the underlying cause, e.g. the device traceback or a
	// transport error.
	Err error
}

func (err IOError) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("remote %s: %s", err.Op, err.Err)
	}
	return fmt.Sprintf("remote %s %q: %s", err.Op, err.Path, err.Err)
}

func (err IOError) Unwrap() error {
	return err.Err
}

// ConnError represents a failure to establish or keep the transport to the
// board, as opposed to a filesystem operation the board rejected.
type ConnError struct {
	Addr string
	Err  error
}

func (err ConnError) Error() string {
	return fmt.Sprintf("connect to %q: %s", err.Addr, err.Err)
}

func (err ConnError) Unwrap() error {
	return err.Err
}

// IsAlreadyExists reports whether err means "the path already exists on the
// board". The sync engine treats this as a benign condition when creating
// directories.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
