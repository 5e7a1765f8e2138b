package verification

import (
	"context"
	"time"

	"github.com/storefront-api/internal/domain"
)

// Store persists pending verification tokens. Implementations keep at most one
// record per email: Put replaces atomically, and Delete only succeeds while the
// record still holds the given token.
type Store interface {
	Put(ctx context.Context, v *domain.VerificationToken) error
	Find(ctx context.Context, token, email string, now time.Time) (*domain.VerificationToken, error)
	Delete(ctx context.Context, email, token string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
