package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/infrastructure/google"
	"github.com/storefront-api/internal/pkg/id"
	"github.com/storefront-api/internal/pkg/logger"
	"github.com/storefront-api/internal/pkg/metrics"
	"github.com/storefront-api/internal/pkg/validate"
)

const authProviderGoogle = "google"

// Result is a signed access token and the principal it was issued to.
type Result struct {
	Token string
	User  *domain.User
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*Result, error)
	AdminLogin(ctx context.Context, req domain.AdminLoginRequest) (*Result, error)
	GoogleLogin(ctx context.Context, req domain.GoogleLoginRequest) (*Result, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByAdminID(ctx context.Context, adminID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	TouchLogin(ctx context.Context, userID string, at time.Time) error
}

type jwtSigner interface {
	Sign(userID, role string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type service struct {
	users  userStore
	jwt    jwtSigner
	google googleVerifier
	now    func() time.Time
	log    *zap.Logger
}

type ServiceDeps struct {
	UserRepo    userStore
	JWTProvider jwtSigner
	Google      googleVerifier // optional; Google sign-in is disabled when nil
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:  deps.UserRepo,
		jwt:    deps.JWTProvider,
		google: deps.Google,
		now:    deps.Now,
		log:    logger.WithModule("auth"),
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

var (
	errInvalidCredentials = domain.NewError(domain.ErrUnauthorized, "Invalid credentials")
	errInvalidAdmin       = domain.NewError(domain.ErrUnauthorized, "Invalid Admin ID or password")
)

// Login authenticates a shopper by email and password. Accounts whose email
// is not verified are refused with domain.ErrEmailNotVerified after the
// password matched.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*Result, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("user", "failure").Inc()
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !passwordMatches(u, req.Password) {
		metrics.AuthAttempts.WithLabelValues("user", "failure").Inc()
		return nil, errInvalidCredentials
	}
	if !u.IsEmailVerified {
		metrics.AuthAttempts.WithLabelValues("user", "unverified").Inc()
		return nil, domain.NewError(domain.ErrEmailNotVerified, "Please verify your email before logging in")
	}
	return s.issue(ctx, u, "user")
}

// AdminLogin accepts either the admin ID or the email as identifier.
func (s *service) AdminLogin(ctx context.Context, req domain.AdminLoginRequest) (*Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}

	u, err := s.users.GetByAdminID(ctx, req.AdminID)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.users.GetByEmail(ctx, domain.NormalizeEmail(req.AdminID))
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("admin", "failure").Inc()
			return nil, errInvalidAdmin
		}
		return nil, err
	}
	if !u.IsAdmin() || !passwordMatches(u, req.Password) {
		metrics.AuthAttempts.WithLabelValues("admin", "failure").Inc()
		return nil, errInvalidAdmin
	}
	return s.issue(ctx, u, "admin")
}

// GoogleLogin signs in with a Google ID token, creating the account on first use.
func (s *service) GoogleLogin(ctx context.Context, req domain.GoogleLoginRequest) (*Result, error) {
	if s.google == nil {
		return nil, domain.NewError(domain.ErrBadRequest, "Google sign-in is not configured")
	}
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}

	p, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("google", "failure").Inc()
		return nil, domain.NewError(domain.ErrUnauthorized, "Invalid Google token")
	}
	email := domain.NormalizeEmail(p.Email)

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		now := s.now().UTC()
		u = &domain.User{
			UserID:          id.New(),
			Name:            p.Name,
			Email:           email,
			Role:            domain.RoleUser,
			IsEmailVerified: p.EmailVerified,
			AuthProvider:    authProviderGoogle,
			GoogleSub:       p.Sub,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.users.Put(ctx, u); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !u.IsEmailVerified {
		return nil, domain.NewError(domain.ErrEmailNotVerified, "Please verify your email before logging in")
	}
	return s.issue(ctx, u, "google")
}

func (s *service) issue(ctx context.Context, u *domain.User, kind string) (*Result, error) {
	tok, err := s.jwt.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, err
	}
	at := s.now().UTC()
	if err := s.users.TouchLogin(ctx, u.UserID, at); err != nil {
		s.log.Warn("record last login", zap.String("user_id", u.UserID), zap.Error(err))
	} else {
		u.LastLogin = &at
	}
	metrics.AuthAttempts.WithLabelValues(kind, "success").Inc()
	return &Result{Token: tok, User: u}, nil
}

func passwordMatches(u *domain.User, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
