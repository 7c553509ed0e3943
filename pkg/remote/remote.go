// Package remote defines the filesystem capability exposed by a connected
// MicroPython board. The core sync engine only ever talks to the board
// through the Explorer interface, so the transport (serial today, maybe
// telnet in the future) stays swappable.
package remote

// An Explorer exposes the filesystem of one connected board. Remote paths
// are rooted slash paths (e.g. "/lib/util.py") relative to the board's
// filesystem root.
//
// Implementations aren't safe for concurrent use. The session owning the
// Explorer serializes all operations.
type Explorer interface {
	// Put uploads the contents of the local file at localPath to remotePath,
	// overwriting any existing file.
	Put(localPath, remotePath string) error

	// Mkdir creates a directory at remotePath. If the directory already
	// exists, the returned error satisfies IsAlreadyExists.
	Mkdir(remotePath string) error

	// Remove deletes the file or empty directory at remotePath.
	Remove(remotePath string) error

	// Close releases the underlying transport. The Explorer is unusable
	// afterwards, even if Close returns an error.
	Close() error

	// SysName returns the identity of the connected board, as reported by
	// the board itself (e.g. "esp32").
	SysName() string
}
