package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/id"
	"github.com/storefront-api/internal/pkg/logger"
	"github.com/storefront-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName    = "name"
	fieldPhone   = "phone"
	fieldAddress = "address"
)

// AuthProviderLocal marks accounts that sign in with a password.
const AuthProviderLocal = "local"

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*domain.User, error)
}

type CreateAdminRequest struct {
	AdminID     string   `json:"adminId" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Permissions []string `json:"permissions"`
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByAdminID(ctx context.Context, adminID string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type proofVerifier interface {
	VerifyProof(token string) (string, error)
}

type service struct {
	repo         userStore
	proofs       proofVerifier
	requireProof bool
	log          *zap.Logger
}

type ServiceDeps struct {
	UserRepo userStore
	// Proofs validates verification proofs; it is only consulted when RequireProof is set.
	Proofs       proofVerifier
	RequireProof bool
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:         deps.UserRepo,
		proofs:       deps.Proofs,
		requireProof: deps.RequireProof,
		log:          logger.WithModule("user"),
	}
}

// Register creates an account for an email that completed verification. The
// account is marked verified at creation.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}

	if s.requireProof {
		if err := s.checkProof(req.VerificationProof, req.Email); err != nil {
			return nil, err
		}
	}

	if err := s.ensureEmailFree(ctx, req.Email, "User already exists"); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:          id.New(),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		PasswordHash:    string(hash),
		Role:            domain.RoleUser,
		IsEmailVerified: true,
		AuthProvider:    AuthProviderLocal,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("account created", zap.String("user_id", u.UserID))
	return u, nil
}

func (s *service) checkProof(proof, email string) error {
	if s.proofs == nil || proof == "" {
		return domain.NewError(domain.ErrEmailNotVerified, "Email verification required")
	}
	proven, err := s.proofs.VerifyProof(proof)
	if err != nil || proven != email {
		return domain.NewError(domain.ErrEmailNotVerified, "Email verification required")
	}
	return nil
}

func (s *service) ensureEmailFree(ctx context.Context, email, msg string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return domain.NewError(domain.ErrDuplicate, msg)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, "User not found")
	}
	return u, err
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, domain.NewError(domain.ErrBadRequest, "name cannot be empty")
		}
		updates[fieldName] = *req.Name
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.Address != nil {
		updates[fieldAddress] = *req.Address
	}
	if len(updates) == 0 {
		return s.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Get(ctx, userID)
}

// CreateAdmin seeds an administrator principal.
func (s *service) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}
	if err := s.ensureEmailFree(ctx, req.Email, "Admin already exists"); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByAdminID(ctx, req.AdminID); err == nil {
		return nil, domain.NewError(domain.ErrDuplicate, "Admin already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	perms := req.Permissions
	if len(perms) == 0 {
		perms = domain.DefaultAdminPermissions
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:          id.New(),
		Name:            req.Name,
		Email:           req.Email,
		PasswordHash:    string(hash),
		Role:            domain.RoleAdmin,
		AdminID:         req.AdminID,
		Permissions:     perms,
		IsEmailVerified: true,
		AuthProvider:    AuthProviderLocal,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
