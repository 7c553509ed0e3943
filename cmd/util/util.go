package util

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/Cellebyte/mpsync/pkg/errors"
)

// HandleFatalError reports `err` to the user and exits with a non-zero
// status. Friendly errors are printed as-is; anything else is logged with
// its full context chain.
func HandleFatalError(err error) {
	if friendly, ok := errors.RootCause(err).(errors.FriendlyError); ok {
		fmt.Fprintln(os.Stderr, friendly.Message)
	} else {
		log.WithError(err).Error("Fatal error")
	}
	os.Exit(1)
}

// HandlePanic recovers from a panic, reports it, and exits non-zero. It's
// meant to be deferred at the top of main so a crash still produces a
// readable message instead of a bare stack dump.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "mpsync crashed: %v\n\n%s\n", r, debug.Stack())
	os.Exit(1)
}
