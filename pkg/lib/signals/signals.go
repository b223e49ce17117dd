package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// Context returns a Context that is canceled on SIGTERM or SIGINT. If a second
// signal is caught, the program is terminated with exitCode.
func Context(exitCode int) context.Context {
	c := make(chan os.Signal, 2)
	signal.Notify(c, shutdownSignals...)
	return notifyContext(context.Background(), c, func() { os.Exit(exitCode) })
}

func notifyContext(parent context.Context, c <-chan os.Signal, exit func()) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-c:
			cancel()
		case <-parent.Done():
			cancel()
			return
		}
		<-c
		exit() // second signal. Exit directly.
	}()
	return ctx
}
