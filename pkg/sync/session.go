package sync

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/Cellebyte/mpsync/pkg/errors"
	"github.com/Cellebyte/mpsync/pkg/remote"
	"github.com/Cellebyte/mpsync/pkg/remote/serial"
)

// Mocked out for unit testing.
var dial = serial.Connect

// A Session owns the connection to one MicroPython board. It isn't safe for
// concurrent use: all operations run sequentially on the caller's goroutine.
type Session struct {
	config   Config
	clock    clockwork.Clock
	explorer remote.Explorer
}

// New creates a disconnected session for the given config.
func New(config Config) *Session {
	return &Session{
		config: config.WithDefaults(),
		clock:  clockwork.NewRealClock(),
	}
}

// Connect establishes the connection to the board. It has to be called
// before copying files to the board.
//
// Any previous connection is torn down first. Each attempt within the retry
// budget is logged; attempts are paced by the configured retry delay.
func (s *Session) Connect() error {
	if err := s.Disconnect(); err != nil {
		log.WithError(err).Warn("Failed to tear down the previous connection")
	}

	fi, err := fs.Stat(s.config.Port)
	switch {
	case os.IsNotExist(err):
		return errors.FileNotFound{Path: s.config.Port}
	case err != nil:
		return errors.WithContext(err, "check port")
	case fi.IsDir():
		return errors.NewFriendlyError(
			"Port %q is a folder, not a serial device!", s.config.Port)
	}

	addr := s.config.address()
	var lastErr error
	for i := 0; i < s.config.ConnectTries; i++ {
		if i > 0 {
			s.clock.Sleep(s.config.RetryDelay)
		}

		explorer, err := dial(addr, s.config.Reset)
		if err != nil {
			lastErr = err
			log.WithError(err).Warnf("Could not connect to %s [%d/%d]",
				s.config.Port, i+1, s.config.ConnectTries)
			continue
		}

		if s.config.Caching {
			explorer = remote.WithCache(explorer)
		}
		s.explorer = explorer
		log.Infof("Connected to %s", explorer.SysName())
		return nil
	}

	return errors.WithContext(lastErr, fmt.Sprintf(
		"could not connect to board at %q after %d attempts",
		s.config.Port, s.config.ConnectTries))
}

// Disconnect closes the connection to the board. Disconnecting an already
// disconnected session is a no-op.
//
// The capability handle is cleared even when the close fails, so a broken
// connection can't leak into later operations. The close error still
// surfaces so callers know the teardown didn't complete cleanly.
func (s *Session) Disconnect() error {
	if s.explorer == nil {
		log.Debug("Already disconnected")
		return nil
	}

	explorer := s.explorer
	s.explorer = nil
	if err := explorer.Close(); err != nil {
		return errors.WithContext(err, "close connection")
	}
	return nil
}

// Connected returns whether the session holds a live connection.
func (s *Session) Connected() bool {
	return s.explorer != nil
}

// activeExplorer returns the connected capability, or ErrNotConnected while
// the session is disconnected.
func (s *Session) activeExplorer() (remote.Explorer, error) {
	if s.explorer == nil {
		return nil, errors.ErrNotConnected
	}
	return s.explorer, nil
}

// WithSession connects a new session, runs `body` against it, and
// guarantees exactly one disconnect attempt on every exit path. A failed
// connect returns without running the body. A failed disconnect is an error
// in its own right, but never masks an error from the body.
func WithSession(config Config, body func(*Session) error) error {
	session := New(config)
	if err := session.Connect(); err != nil {
		return errors.WithContext(err, "connect")
	}

	bodyErr := body(session)
	if err := session.Disconnect(); err != nil {
		if bodyErr != nil {
			log.WithError(err).Error("Failed to disconnect from the board")
			return bodyErr
		}
		return errors.WithContext(err, "disconnect")
	}
	return bodyErr
}
