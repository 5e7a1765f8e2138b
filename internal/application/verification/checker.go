package verification

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/logger"
	"github.com/storefront-api/internal/pkg/metrics"
)

// Checker consumes verification tokens. A token is accepted at most once.
type Checker struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

func NewChecker(store Store, now func() time.Time) *Checker {
	if now == nil {
		now = time.Now
	}
	return &Checker{store: store, now: now, log: logger.WithModule("verification")}
}

// Check reports whether (token, email) names a live token, deleting the record
// either way once it has been found.
func (c *Checker) Check(ctx context.Context, token, email string) bool {
	email = domain.NormalizeEmail(email)
	rec, err := c.store.Find(ctx, token, email, c.now())
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		if derr := c.store.Delete(ctx, rec.Email, rec.Token); derr != nil && !errors.Is(derr, domain.ErrNotFound) {
			c.log.Warn("delete expired verification token", zap.String("email", email), zap.Error(derr))
		}
		metrics.VerificationChecks.WithLabelValues("expired").Inc()
		return false
	case errors.Is(err, domain.ErrNotFound):
		metrics.VerificationChecks.WithLabelValues("invalid").Inc()
		return false
	case err != nil:
		c.log.Error("find verification token", zap.String("email", email), zap.Error(err))
		metrics.VerificationChecks.WithLabelValues("invalid").Inc()
		return false
	}

	// Losing the conditional delete means a concurrent check consumed it first.
	if err := c.store.Delete(ctx, rec.Email, rec.Token); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.log.Error("consume verification token", zap.String("email", email), zap.Error(err))
		}
		metrics.VerificationChecks.WithLabelValues("invalid").Inc()
		return false
	}
	metrics.VerificationChecks.WithLabelValues("valid").Inc()
	return true
}
