package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xkcdfetch/pkg/logger"
	"xkcdfetch/pkg/metrics"
)

// interruptNotifier is told once the first interrupt arrives.
type interruptNotifier interface {
	Interrupted()
}

// watchInterrupts returns a context cancelled on SIGINT or SIGTERM. The
// watcher only posts the notice and cancels; cleanup stays with the caller.
func watchInterrupts(parent context.Context, notifier interruptNotifier) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-sigs:
				notifier.Interrupted()
				cancel()
			case <-ctx.Done():
				return
			}
		}
	}()

	return ctx, func() {
		signal.Stop(sigs)
		cancel()
		<-done
	}
}

// serveMetrics exposes the registry on addr until the returned stop is called.
func serveMetrics(addr string, m *metrics.Metrics, log logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).WithField("addr", addr).Error("Metrics server failed")
		}
	}()
	log.InfoWithFields("Serving metrics", map[string]interface{}{"addr": addr})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
