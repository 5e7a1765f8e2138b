package http

import (
	"context"
	"io"
	"net/netip"
	"time"

	"github.com/storefront-api/internal/application/notification"
	"github.com/storefront-api/internal/application/verification"
	"github.com/storefront-api/internal/infrastructure/dynamo"
	"github.com/storefront-api/internal/infrastructure/google"
	jwtinfra "github.com/storefront-api/internal/infrastructure/jwt"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo          *dynamo.UserRepo
	ProductRepo       *dynamo.ProductRepo
	CartRepo          *dynamo.CartRepo
	OrderRepo         *dynamo.OrderRepo
	VerificationStore verification.Store
	Dispatcher        *notification.Dispatcher
	JWTProvider       *jwtinfra.Provider

	// Optional integrations; leave nil to disable.
	Images ImageStore
	SMS    SMSSender
	Google GoogleVerifier

	SiteName     string
	TokenTTL     time.Duration
	RequireProof bool

	// TrustedProxies may rewrite the client address; empty means RemoteAddr is used as is.
	TrustedProxies []netip.Prefix
}

// ImageStore is the object storage backend for product images.
type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, objectURL string) error
}

// SMSSender delivers order confirmation texts.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// GoogleVerifier validates Google ID tokens.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}
