package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals are the signals that stop a running command.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SetupSignalHandler returns a context derived from parent that is cancelled
// on SIGINT or SIGTERM, and a stop function releasing the signal handler.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

// ReloadSignal returns a channel receiving SIGHUP, used to trigger a schema
// reload in long-running commands. Call stop to release it.
func ReloadSignal() (ch <-chan os.Signal, stop func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP)
	return c, func() { signal.Stop(c) }
}
