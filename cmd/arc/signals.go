package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// terminationSignals stop the loop and still let raw mode be released.
var terminationSignals = []os.Signal{syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT}

// terminationSignal is the cancellation cause recorded when the process is
// asked to stop from outside.
type terminationSignal struct {
	sig syscall.Signal
}

func (t terminationSignal) Error() string {
	return fmt.Sprintf("terminated by %v", t.sig)
}

// notifyTermination returns a context cancelled on any of terminationSignals.
// With ISIG off the keyboard cannot raise them, but kill(1) still can.
func notifyTermination(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, terminationSignals...)

	go func() {
		select {
		case sig := <-ch:
			if s, ok := sig.(syscall.Signal); ok {
				cancel(terminationSignal{sig: s})
				return
			}
			cancel(nil)
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(ch)
		cancel(nil)
	}
}

// terminationStatus maps the cancellation cause of ctx to an exit status,
// 128 plus the signal number as shells report it.
func terminationStatus(ctx context.Context) int {
	if t, ok := context.Cause(ctx).(terminationSignal); ok {
		return 128 + int(t.sig)
	}
	return exitFatal
}
