package verification

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/storefront-api/internal/pkg/logger"
	"github.com/storefront-api/internal/pkg/metrics"
)

const defaultSweepSpec = "@hourly"

// Sweeper periodically removes expired verification tokens that the store's
// own expiry mechanism has not reaped yet.
type Sweeper struct {
	stores   []Store
	cron     *cron.Cron
	schedule string
	now      func() time.Time
	log      *zap.Logger
}

// SweeperOption customises the Sweeper.
type SweeperOption func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) SweeperOption {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron specification.
func WithSchedule(spec string) SweeperOption {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

func NewSweeper(stores []Store, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		stores:   stores,
		schedule: defaultSweepSpec,
		now:      time.Now,
		log:      logger.WithModule("verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the sweep job and launches the scheduler.
func (s *Sweeper) Start() error {
	if len(s.stores) == 0 {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("verification sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce purges every store and returns the combined errors.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	var errs error
	now := s.now()
	for _, st := range s.stores {
		n, err := st.PurgeExpired(ctx, now)
		if n > 0 {
			metrics.VerificationsPurged.Add(float64(n))
			s.log.Info("purged expired verification tokens", zap.Int("count", n))
		}
		errs = multierr.Append(errs, err)
	}
	return errs
}
