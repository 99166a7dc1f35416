// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionPurger removes expired login sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) error
}

// jobTimeout bounds a single run.
const jobTimeout = 30 * time.Second

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), log: log}
}

// AddSessionPurge schedules p with a standard cron spec or descriptor such
// as "@hourly".
func (s *Scheduler) AddSessionPurge(spec string, p SessionPurger) error {
	_, err := s.cron.AddFunc(spec, func() { s.purgeSessions(p) })
	if err != nil {
		return fmt.Errorf("schedule session purge %q: %w", spec, err)
	}
	s.log.Info("session purge scheduled", zap.String("schedule", spec))
	return nil
}

func (s *Scheduler) purgeSessions(p SessionPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	start := time.Now()
	if err := p.PurgeExpired(ctx); err != nil {
		s.log.Error("session purge failed", zap.Error(err))
		return
	}
	s.log.Debug("expired sessions purged", zap.Duration("took", time.Since(start)))
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running job, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
