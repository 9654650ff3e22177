package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		slog.Info(LogMsgShutdownSignal)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	GracefulShutdown(shutdownCtx, a)
	return nil
}

// GracefulShutdown stops the HTTP server first so in-flight requests finish,
// then releases Redis and the database pool.
// Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, a *App) {
	slog.Info(LogMsgShuttingDownServer)

	if a.Server != nil {
		if err := a.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}
	a.close()

	slog.Info(LogMsgServerStopped)
}
