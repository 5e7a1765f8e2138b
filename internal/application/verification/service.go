package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/logger"
	"github.com/storefront-api/internal/pkg/metrics"
	pkgtoken "github.com/storefront-api/internal/pkg/token"
	"github.com/storefront-api/internal/pkg/validate"
)

// DefaultTokenTTL is how long an issued verification link stays valid.
const DefaultTokenTTL = 24 * time.Hour

// pendingName addresses the recipient before an account exists.
const pendingName = "New User"

// CheckResult is returned for a successfully consumed token.
type CheckResult struct {
	Email string
	Proof string
}

type Service interface {
	RequestVerification(ctx context.Context, req domain.RequestVerificationRequest) (string, error)
	CheckVerification(ctx context.Context, req domain.CheckVerificationRequest) (*CheckResult, error)
}

type userLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type notifier interface {
	Send(ctx context.Context, email, name, token string) bool
}

type tokenChecker interface {
	Check(ctx context.Context, token, email string) bool
}

type proofSigner interface {
	SignProof(email string) (string, error)
}

type service struct {
	store    Store
	users    userLookup
	notifier notifier
	checker  tokenChecker
	proofs   proofSigner
	issue    func() (string, error)
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
}

type ServiceDeps struct {
	Store    Store
	Users    userLookup
	Notifier notifier
	Checker  tokenChecker // defaults to a Checker over Store
	Proofs   proofSigner  // optional; no proof is issued when nil
	Issue    func() (string, error)
	TokenTTL time.Duration
	Now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:    deps.Store,
		users:    deps.Users,
		notifier: deps.Notifier,
		checker:  deps.Checker,
		proofs:   deps.Proofs,
		issue:    deps.Issue,
		ttl:      deps.TokenTTL,
		now:      deps.Now,
		log:      logger.WithModule("verification"),
	}
	if s.issue == nil {
		s.issue = pkgtoken.NewVerificationToken
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.checker == nil {
		s.checker = NewChecker(s.store, s.now)
	}
	return s
}

// RequestVerification issues a fresh token for an unregistered email, replacing
// any earlier one, and dispatches the link. It returns the normalized email.
func (s *service) RequestVerification(ctx context.Context, req domain.RequestVerificationRequest) (string, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return "", domain.NewError(domain.ErrBadRequest, err.Error())
	}
	email := req.Email

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return "", domain.NewError(domain.ErrDuplicate, "Email already registered")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	tok, err := s.issue()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	if err := s.store.Put(ctx, &domain.VerificationToken{
		Email:     email,
		Token:     tok,
		ExpiresAt: now.Add(s.ttl).Unix(),
		CreatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}
	metrics.VerificationsIssued.Inc()

	if !s.notifier.Send(ctx, email, pendingName, tok) {
		return "", domain.NewError(domain.ErrDelivery, "Failed to send verification email")
	}
	s.log.Info("verification requested", zap.String("email", email))
	return email, nil
}

// CheckVerification consumes the token and, when a signer is configured,
// returns a short-lived proof bound to the email for the registration step.
func (s *service) CheckVerification(ctx context.Context, req domain.CheckVerificationRequest) (*CheckResult, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}
	email := req.Email

	if !s.checker.Check(ctx, req.Token, email) {
		return nil, domain.ErrInvalidToken
	}

	res := &CheckResult{Email: email}
	if s.proofs != nil {
		proof, err := s.proofs.SignProof(email)
		if err != nil {
			return nil, fmt.Errorf("sign verification proof: %w", err)
		}
		res.Proof = proof
	}
	return res, nil
}
