package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
)

// DefaultTokenRefreshInterval keeps access tokens (1h lifetime) warm
const DefaultTokenRefreshInterval = 45 * time.Minute

// Refresher renews a cached credential
type Refresher interface {
	Refresh(ctx context.Context) error
	Expiry() time.Time
}

// TokenRefreshWorker refreshes a credential on a fixed interval.
// Failures are logged and retried at the next tick; requests keep using the cached token.
type TokenRefreshWorker struct {
	refresher Refresher
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
}

// NewTokenRefreshWorker creates a new worker for refreshing access tokens
func NewTokenRefreshWorker(refresher Refresher, interval time.Duration) *TokenRefreshWorker {
	if interval <= 0 {
		interval = DefaultTokenRefreshInterval
	}
	return &TokenRefreshWorker{
		refresher: refresher,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background refresh loop without blocking server startup
func (w *TokenRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("Token refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion. Safe to call more than once.
func (w *TokenRefreshWorker) Stop() {
	w.stopOnce.Do(func() {
		logging.Default().Info("Token refresh worker stopping")
		close(w.stopCh)
		<-w.doneCh
		logging.Default().Info("Token refresh worker stopped")
	})
}

func (w *TokenRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.refresh(ctx); err != nil {
		logging.Default().Error("Initial token refresh failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				logging.Default().Error("Token refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Token refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Token refresh worker context cancelled")
			return
		}
	}
}

func (w *TokenRefreshWorker) refresh(ctx context.Context) error {
	startTime := time.Now()

	if err := w.refresher.Refresh(ctx); err != nil {
		return goerr.Wrap(err, "failed to refresh access token")
	}

	logging.Default().Info("Access token refreshed",
		"expiry", w.refresher.Expiry(),
		"duration", time.Since(startTime).String())

	return nil
}
