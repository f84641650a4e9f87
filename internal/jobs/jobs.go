// Package jobs runs the periodic maintenance tasks of the API process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	TokenCleanupSchedule = "@every 6h"
	RateLimitSweep       = "@every 5m"
	jobTimeout           = time.Minute
)

type SubscriptionExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

type TokenCleaner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Sweeper interface {
	Sweep(now time.Time) int
}

// Scheduler owns the cron runner. Jobs never overlap with themselves and a
// panic in one job is recovered and logged.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		log:  log,
	}
}

// Add registers fn under spec. fn gets a context bounded by jobTimeout.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			s.log.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Debug("job done", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs or for ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("cron stop timed out")
	}
}

// ExpireSubscriptions returns the job body for the expiry schedule.
func ExpireSubscriptions(svc SubscriptionExpirer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := svc.ExpireOverdue(ctx)
		return err
	}
}

func CleanupTokens(repo TokenCleaner, log *zap.Logger) func(ctx context.Context) error {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context) error {
		n, err := repo.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("expired tokens removed", zap.Int64("count", n))
		}
		return nil
	}
}

func SweepRateLimiter(s Sweeper) func(ctx context.Context) error {
	return func(context.Context) error {
		s.Sweep(time.Now())
		return nil
	}
}

// Register installs every maintenance job. expirySpec comes from config.
func Register(s *Scheduler, expirySpec string, subs SubscriptionExpirer, tokens TokenCleaner, limiter Sweeper) error {
	if err := s.Add("subscription_expiry", expirySpec, ExpireSubscriptions(subs)); err != nil {
		return err
	}
	if err := s.Add("token_cleanup", TokenCleanupSchedule, CleanupTokens(tokens, s.log)); err != nil {
		return err
	}
	if limiter != nil {
		if err := s.Add("ratelimit_sweep", RateLimitSweep, SweepRateLimiter(limiter)); err != nil {
			return err
		}
	}
	return nil
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
