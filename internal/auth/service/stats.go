package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
)

// SessionCounter counts live session records.
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

// UserCounter counts registered users.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// StatsService periodically refreshes the session and user gauges.
type StatsService struct {
	Sessions SessionCounter
	Users    UserCounter
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewStatsService creates the worker. If interval is 0 or negative, it
// defaults to 30 seconds.
func NewStatsService(sessions SessionCounter, users UserCounter, m *metrics.Metrics, logger *slog.Logger, interval time.Duration) *StatsService {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &StatsService{
		Sessions: sessions,
		Users:    users,
		Metrics:  m,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *StatsService) Start() {
	go s.run()
	s.Logger.Info("stats service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress collection.
func (s *StatsService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("stats service stopped")
}

func (s *StatsService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Collect(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Collect(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Collect takes one sample. Each source is independent, a failure in one
// leaves the other gauge updated.
func (s *StatsService) Collect(ctx context.Context) {
	if n, err := s.Sessions.Count(ctx); err != nil {
		s.Logger.Warn("failed to count sessions", "error", err)
	} else {
		s.Metrics.SetActiveSessions(n)
	}

	if n, err := s.Users.CountUsers(ctx); err != nil {
		s.Logger.Error("failed to count users", "error", err)
	} else {
		s.Metrics.SetRegisteredUsers(n)
	}
}
