package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	HourlyEvictionSpec    = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	evictIdleTimeout      = 5 * time.Minute
)

// Evictor deletes sessions idle for longer than ttl.
type Evictor interface {
	EvictIdle(ctx context.Context, ttl time.Duration) (int64, error)
}

type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	evictor Evictor
	ttl     time.Duration
	log     *slog.Logger
}

func New(ctx context.Context, evictor Evictor, ttl time.Duration, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:     ctx,
		cron:    c,
		evictor: evictor,
		ttl:     ttl,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(HourlyEvictionSpec, s.evictIdleSessions); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) evictIdleSessions() {
	ctx, cancel := context.WithTimeout(s.ctx, evictIdleTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	deleted, err := s.evictor.EvictIdle(ctx, s.ttl)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to evict idle sessions",
			"error", err,
			"ttl", s.ttl)

		return
	}

	s.log.InfoContext(ctx, "Idle sessions are evicted",
		"deleted", deleted,
		"ttl", s.ttl)
}
