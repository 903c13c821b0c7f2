package lifecycle

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Run calls fn with a context that is canceled on SIGINT or SIGTERM and
// returns once fn has returned.
func Run(ctx context.Context, logger *slog.Logger, fn func(ctx context.Context) error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return run(ctx, logger, quit, fn)
}

func run(ctx context.Context, logger *slog.Logger, quit <-chan os.Signal, fn func(ctx context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case s := <-quit:
		logger.Info("received signal", "signal", s)
	}

	// One shutdown trigger only; a second signal is left to the default handler.
	cancel()
	return <-done
}
