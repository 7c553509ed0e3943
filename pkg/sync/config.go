package sync

import (
	"time"

	"github.com/spf13/afero"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

const (
	// DefaultPort is the serial device most boards show up as on Linux.
	DefaultPort = "/dev/ttyUSB0"

	// DefaultConnectTries is the number of times Connect attempts to reach
	// the board before giving up.
	DefaultConnectTries = 5

	// DefaultRetryDelay is how long Connect waits between attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultProtocol is the transport tag used to address the board.
	DefaultProtocol = "ser"
)

// Config holds the settings for one sync session.
type Config struct {
	// Folder is the local folder to mirror onto the board.
	Folder string

	// Port is the serial device of the board.
	Port string

	// Reset soft reboots the board when connecting.
	Reset bool

	// Caching skips uploads whose contents haven't changed since the last
	// upload in this session.
	Caching bool

	// ConnectTries is the connection retry budget (default 5).
	ConnectTries int

	// RetryDelay is the pause between connection attempts (default 500ms).
	RetryDelay time.Duration

	// Protocol is the transport tag (default "ser"). Kept configurable in
	// case telnet connections are supported in the future.
	Protocol string
}

// WithDefaults returns a copy of the config with default values applied.
func (c Config) WithDefaults() Config {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.ConnectTries <= 0 {
		c.ConnectTries = DefaultConnectTries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Protocol == "" {
		c.Protocol = DefaultProtocol
	}
	return c
}

// address is the protocol-prefixed transport address of the board.
func (c Config) address() string {
	return c.Protocol + ":" + c.Port
}
