// Package graceful ties process shutdown to OS signals.
package graceful

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Context creates a context that is canceled when SIGINT or SIGTERM is
// received.
func Context(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Printf("Received %s, starting graceful shutdown...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// ShutdownFunc releases one resource within the deadline of ctx.
type ShutdownFunc func(ctx context.Context) error

// Shutdown runs fns in order, giving all of them together at most timeout.
// Every function runs even if an earlier one fails; the errors are joined.
func Shutdown(timeout time.Duration, fns ...ShutdownFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		log.Printf("Shutdown finished with %d errors", len(errs))
	}
	return errors.Join(errs...)
}
