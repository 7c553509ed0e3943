// Package serial implements the remote filesystem capability over the
// MicroPython raw REPL. Every filesystem operation is a small Python
// snippet executed on the board through its serial console.
package serial

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	bugst "go.bug.st/serial"

	"github.com/Cellebyte/mpsync/pkg/errors"
	"github.com/Cellebyte/mpsync/pkg/remote"
)

// ProtocolPrefix is the transport tag expected in addresses passed to
// Connect, e.g. "ser:/dev/ttyUSB0".
const ProtocolPrefix = "ser:"

const baudRate = 115200

// rawReplBanner is printed by the board when it enters the raw REPL.
const rawReplBanner = "raw REPL; CTRL-B to exit\r\n>"

// chunkSize bounds writes to the board so we don't overrun its input buffer.
const chunkSize = 256

// maxIdleReads bounds how many consecutive empty reads we tolerate before
// declaring the board unresponsive. The serial port read timeout is 100ms,
// so this works out to roughly a 10 second deadline.
const maxIdleReads = 100

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// Mocked out for unit testing.
var openPort = func(device string) (io.ReadWriteCloser, error) {
	port, err := bugst.Open(device, &bugst.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

// Explorer talks to one MicroPython board held in its raw REPL.
type Explorer struct {
	port    io.ReadWriteCloser
	sysName string
}

// Connect opens the board at the given protocol-prefixed address and puts it
// into the raw REPL. When `reset` is set, the board is soft-rebooted first so
// syncing starts from a clean interpreter state.
func Connect(addr string, reset bool) (remote.Explorer, error) {
	device := strings.TrimPrefix(addr, ProtocolPrefix)
	if device == addr {
		return nil, remote.ConnError{Addr: addr,
			Err: errors.New("unsupported protocol, expected a ser: address")}
	}

	port, err := openPort(device)
	if err != nil {
		return nil, remote.ConnError{Addr: addr, Err: err}
	}

	explorer := &Explorer{port: port}
	if err := explorer.handshake(reset); err != nil {
		if closeErr := port.Close(); closeErr != nil {
			log.WithError(closeErr).Debug("Failed to close port after failed handshake")
		}
		return nil, remote.ConnError{Addr: addr, Err: err}
	}
	return explorer, nil
}

// handshake interrupts whatever the board is running, enters the raw REPL,
// and queries the board's identity.
func (e *Explorer) handshake(reset bool) error {
	if err := e.enterRawRepl(); err != nil {
		return errors.WithContext(err, "enter raw REPL")
	}

	if reset {
		if _, err := e.port.Write([]byte("\x04")); err != nil {
			return errors.WithContext(err, "soft reboot")
		}
		if _, err := e.readUntil([]byte("soft reboot")); err != nil {
			return errors.WithContext(err, "wait for soft reboot")
		}
		if err := e.enterRawRepl(); err != nil {
			return errors.WithContext(err, "re-enter raw REPL")
		}
	}

	out, err := e.exec("import uos\nprint(uos.uname()[0])")
	if err != nil {
		return errors.WithContext(err, "query board identity")
	}
	e.sysName = strings.TrimSpace(string(out))
	return nil
}

func (e *Explorer) enterRawRepl() error {
	// Ctrl-C twice to interrupt any running program, then Ctrl-A for the
	// raw REPL.
	if _, err := e.port.Write([]byte("\r\x03\x03")); err != nil {
		return err
	}
	if _, err := e.port.Write([]byte("\r\x01")); err != nil {
		return err
	}
	_, err := e.readUntil([]byte(rawReplBanner))
	return err
}

// exec runs a Python snippet on the board and returns its stdout. A
// non-empty traceback from the board is returned as a deviceError.
func (e *Explorer) exec(code string) ([]byte, error) {
	log.WithField("code", code).Debug("Executing on board")

	payload := []byte(code)
	for len(payload) > 0 {
		n := chunkSize
		if n > len(payload) {
			n = len(payload)
		}
		if _, err := e.port.Write(payload[:n]); err != nil {
			return nil, errors.WithContext(err, "write code")
		}
		payload = payload[n:]
	}
	if _, err := e.port.Write([]byte("\x04")); err != nil {
		return nil, errors.WithContext(err, "submit code")
	}

	ack, err := e.readUntil([]byte("OK"))
	if err != nil {
		return nil, errors.WithContext(err, "wait for ack")
	}
	if len(ack) != 0 {
		return nil, fmt.Errorf("unexpected response before ack: %q", ack)
	}

	stdout, err := e.readUntil([]byte("\x04"))
	if err != nil {
		return nil, errors.WithContext(err, "read output")
	}
	traceback, err := e.readUntil([]byte("\x04"))
	if err != nil {
		return nil, errors.WithContext(err, "read traceback")
	}

	// The board prints its raw REPL prompt after every completed command,
	// even a failed one. Consume it here so it isn't mistaken for part of
	// the next command's ack.
	if _, err := e.readUntil([]byte(">")); err != nil {
		return nil, errors.WithContext(err, "wait for prompt")
	}

	if len(traceback) != 0 {
		return stdout, deviceError{traceback: string(traceback)}
	}
	return stdout, nil
}

// readUntil consumes the transport until `marker` is seen and returns
// everything read before it.
func (e *Explorer) readUntil(marker []byte) ([]byte, error) {
	var out []byte
	buf := make([]byte, 1)
	idleReads := 0
	for !bytes.HasSuffix(out, marker) {
		n, err := e.port.Read(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			idleReads++
			if idleReads >= maxIdleReads {
				return nil, fmt.Errorf("board did not respond, expected %q", marker)
			}
			continue
		}
		idleReads = 0
		out = append(out, buf[:n]...)
	}
	return out[:len(out)-len(marker)], nil
}

// Put uploads the local file to the board, writing it in chunks so large
// files don't exhaust the board's memory.
func (e *Explorer) Put(localPath, remotePath string) error {
	contents, err := afero.ReadFile(fs, localPath)
	if err != nil {
		return remote.IOError{Op: "put", Path: remotePath,
			Err: errors.WithContext(err, "read local file")}
	}

	if _, err := e.exec(fmt.Sprintf("f = open(%s, 'wb')", pyString(remotePath))); err != nil {
		return e.ioError("put", remotePath, err)
	}
	for len(contents) > 0 {
		n := chunkSize
		if n > len(contents) {
			n = len(contents)
		}
		if _, err := e.exec(fmt.Sprintf("f.write(%s)", pyBytes(contents[:n]))); err != nil {
			return e.ioError("put", remotePath, err)
		}
		contents = contents[n:]
	}
	if _, err := e.exec("f.close()"); err != nil {
		return e.ioError("put", remotePath, err)
	}
	return nil
}

// Mkdir creates a directory on the board. Creating a directory that already
// exists returns an error satisfying remote.IsAlreadyExists.
func (e *Explorer) Mkdir(remotePath string) error {
	code := fmt.Sprintf("import uos\nuos.mkdir(%s)", pyString(remotePath))
	if _, err := e.exec(code); err != nil {
		return e.ioError("mkdir", remotePath, err)
	}
	return nil
}

// Remove deletes a file, or an empty directory, from the board.
func (e *Explorer) Remove(remotePath string) error {
	code := fmt.Sprintf(
		"import uos\ntry:\n    uos.remove(%[1]s)\nexcept OSError:\n    uos.rmdir(%[1]s)",
		pyString(remotePath))
	if _, err := e.exec(code); err != nil {
		return e.ioError("rm", remotePath, err)
	}
	return nil
}

// Close leaves the raw REPL so the board gets its friendly prompt back, then
// releases the serial port.
func (e *Explorer) Close() error {
	_, writeErr := e.port.Write([]byte("\r\x02"))
	closeErr := e.port.Close()
	if writeErr != nil {
		return remote.IOError{Op: "close", Err: writeErr}
	}
	if closeErr != nil {
		return remote.IOError{Op: "close", Err: closeErr}
	}
	return nil
}

// SysName returns the board identity captured during the handshake.
func (e *Explorer) SysName() string {
	return e.sysName
}

func (e *Explorer) ioError(op, path string, err error) error {
	if devErr, ok := err.(deviceError); ok {
		if strings.Contains(devErr.traceback, "EEXIST") {
			err = remote.ErrAlreadyExists
		}
	}
	return remote.IOError{Op: op, Path: path, Err: err}
}

// deviceError is a traceback raised by the Python code we ran on the board.
type deviceError struct {
	traceback string
}

func (err deviceError) Error() string {
	return fmt.Sprintf("board raised: %s", strings.TrimSpace(err.traceback))
}
