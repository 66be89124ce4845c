package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/models"
	"github.com/charlesng35/authflow/pkg/logger"
)

const defaultSchedule = "@every 15m"

// Purger removes expired entries from a storage backend. Redis expires keys itself and needs none.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Cleaner coordinates background maintenance: purging expired client storage entries
// and removing spent or expired verification codes and reset tokens.
type Cleaner struct {
	db       *gorm.DB
	store    Purger
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification of the cleanup job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil db or store skips the corresponding cleanup.
func NewCleaner(db *gorm.DB, store Purger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:       db,
		store:    store,
		now:      time.Now,
		schedule: defaultSchedule,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

func (c *Cleaner) enabled() bool {
	return c.db != nil || c.store != nil
}

// Start registers the cleanup job and launches the scheduler when there is anything to clean.
func (c *Cleaner) Start() error {
	if !c.enabled() {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("maintenance cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", c.schedule, err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler. The returned context is done once running jobs complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured cleanup sequentially. Used by the scheduler, in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	now := c.now().UTC()

	var errs error

	if c.store != nil {
		purged, err := c.store.PurgeExpired(ctx, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("purge storage: %w", err))
		} else if purged > 0 {
			c.log.Debug("purged expired storage entries", zap.Int64("count", purged))
		}
	}

	if c.db != nil {
		stats, err := CleanupTokens(ctx, c.db, now)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if stats.PasswordResets+stats.EmailVerifications > 0 {
			c.log.Debug("removed spent tokens",
				zap.Int64("password_resets", stats.PasswordResets),
				zap.Int64("email_verifications", stats.EmailVerifications),
			)
		}
	}

	return errs
}

// TokenCleanupStats captures the number of records removed for each token type.
type TokenCleanupStats struct {
	PasswordResets     int64
	EmailVerifications int64
}

// CleanupTokens removes expired or consumed reset tokens and verification codes.
func CleanupTokens(ctx context.Context, db *gorm.DB, now time.Time) (TokenCleanupStats, error) {
	if db == nil {
		return TokenCleanupStats{}, errors.New("cleanup tokens: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := TokenCleanupStats{}

	if result := db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&models.PasswordResetToken{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup tokens: password reset tokens: %w", result.Error)
	} else {
		stats.PasswordResets = result.RowsAffected
	}

	if result := db.WithContext(ctx).
		Where("expires_at < ? OR verified_at IS NOT NULL", now).
		Delete(&models.EmailVerification{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup tokens: email verification: %w", result.Error)
	} else {
		stats.EmailVerifications = result.RowsAffected
	}

	return stats, nil
}
