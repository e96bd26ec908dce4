package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"go-linkedin-extractor/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// StoppableFunc adapts a plain function to Stoppable.
type StoppableFunc func(ctx context.Context) error

func (f StoppableFunc) Shutdown(ctx context.Context) error { return f(ctx) }

// Graceful blocks until one of signals arrives (or parent is done), then
// calls s.Shutdown with the given timeout.
func Graceful(parent context.Context, signals []os.Signal, s Stoppable, timeout time.Duration, log *logging.Logger) {
	sigCtx, stop := signal.NotifyContext(parent, signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("🛑 shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown completed with error", "err", err)
	} else {
		log.Info("graceful shutdown completed successfully")
	}
}
