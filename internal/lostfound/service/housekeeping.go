package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
)

// HousekeepingService periodically removes invites whose expiry has passed,
// whatever their status. An accept against a removed invite sees an unknown
// token.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to five minutes.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweep once and then on every tick until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes expired invites and reports how many went.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	n, err := s.Store.Invites().DeleteExpiredInvites(ctx, clock(s.Now))
	if err != nil {
		s.Logger.Error("failed to delete expired invites", "error", err)
		return 0
	}
	if n > 0 {
		s.Logger.Info("deleted expired invites", "count", n)
	} else {
		s.Logger.Debug("no expired invites")
	}
	return n
}
