package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/store"
)

// HousekeepingService periodically prunes download events older than the
// retention window so the accounting table does not grow without bound.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Non-positive
// interval defaults to 1 hour, non-positive retention to 90 days.
func NewHousekeepingService(
	store store.Store,
	logger *slog.Logger,
	interval, retention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes download events that fell out of the retention window and
// returns how many were removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := nowFrom(s.Now).Add(-s.Retention)

	n, err := s.Store.DownloadEvents().DeleteDownloadEventsBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to prune download events", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted_download_events", n, "cutoff", cutoff)
	return n
}
