package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Serve runs the local proxy until ctx is done and then shuts it down within
// the configured grace period.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Config.HTTP
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", cfg.Addr).Str("backend", a.Config.APIURL).Msg("ridepool proxy listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen %s: %w", cfg.Addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	a.Log.Info().Msg("shutting down proxy")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown proxy: %w", err)
	}
	return nil
}
