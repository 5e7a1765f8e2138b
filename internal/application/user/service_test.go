package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-api/internal/domain"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByAdminID(ctx context.Context, adminID string) (*domain.User, error) {
	args := m.Called(ctx, adminID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockProofs struct{ mock.Mock }

func (m *mockProofs) VerifyProof(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// --- helpers ---

var errNotFound = fmt.Errorf("user not found: %w", domain.ErrNotFound)

func baseReq() domain.RegisterRequest {
	return domain.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	}
}

// --- Register ---

func TestRegister_WithoutPriorCheckSucceeds(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, errNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.True(t, u.IsEmailVerified)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEmpty(t, u.UserID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	us.AssertExpectations(t)
}

func TestRegister_Duplicate(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Contains(t, err.Error(), "User already exists")
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, errNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)

	req := baseReq()
	req.Email = "  Alice@Example.com"
	u, err := NewService(ServiceDeps{UserRepo: us}).Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestRegister_ShortPassword(t *testing.T) {
	req := baseReq()
	req.Password = "123"
	_, err := NewService(ServiceDeps{UserRepo: &mockUserStore{}}).Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRegister_ProofRequired_Missing(t *testing.T) {
	us := &mockUserStore{}
	svc := NewService(ServiceDeps{UserRepo: us, Proofs: &mockProofs{}, RequireProof: true})

	_, err := svc.Register(context.Background(), baseReq())
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_ProofRequired_WrongEmail(t *testing.T) {
	proofs := &mockProofs{}
	proofs.On("VerifyProof", "p").Return("mallory@example.com", nil)
	svc := NewService(ServiceDeps{UserRepo: &mockUserStore{}, Proofs: proofs, RequireProof: true})

	req := baseReq()
	req.VerificationProof = "p"
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)
}

func TestRegister_ProofRequired_Valid(t *testing.T) {
	proofs := &mockProofs{}
	proofs.On("VerifyProof", "p").Return("alice@example.com", nil)
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, errNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)

	req := baseReq()
	req.VerificationProof = "p"
	_, err := NewService(ServiceDeps{UserRepo: us, Proofs: proofs, RequireProof: true}).Register(context.Background(), req)
	assert.NoError(t, err)
}

// --- Profile ---

func TestUpdateProfile_AppliesFields(t *testing.T) {
	name := "Alice B"
	addr := &domain.Address{City: "Lisbon"}
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", map[string]interface{}{
		fieldName:    name,
		fieldAddress: *addr,
	}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Name: name}, nil)

	u, err := NewService(ServiceDeps{UserRepo: us}).UpdateProfile(context.Background(), "u1",
		domain.UpdateProfileRequest{Name: &name, Address: addr})
	require.NoError(t, err)
	assert.Equal(t, name, u.Name)
	us.AssertExpectations(t)
}

func TestUpdateProfile_EmptyNameRejected(t *testing.T) {
	empty := ""
	_, err := NewService(ServiceDeps{UserRepo: &mockUserStore{}}).UpdateProfile(context.Background(), "u1",
		domain.UpdateProfileRequest{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestGet_NotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "nope").Return(nil, errNotFound)
	_, err := NewService(ServiceDeps{UserRepo: us}).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- CreateAdmin ---

func TestCreateAdmin_DefaultsPermissions(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "admin@shop.test").Return(nil, errNotFound)
	us.On("GetByAdminID", mock.Anything, "ADM001").Return(nil, errNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)

	u, err := NewService(ServiceDeps{UserRepo: us}).CreateAdmin(context.Background(), CreateAdminRequest{
		AdminID: "ADM001", Name: "Root", Email: "admin@shop.test", Password: "s3cretpass",
	})
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.Equal(t, domain.DefaultAdminPermissions, u.Permissions)
}

func TestCreateAdmin_DuplicateAdminID(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "admin@shop.test").Return(nil, errNotFound)
	us.On("GetByAdminID", mock.Anything, "ADM001").Return(&domain.User{}, nil)

	_, err := NewService(ServiceDeps{UserRepo: us}).CreateAdmin(context.Background(), CreateAdminRequest{
		AdminID: "ADM001", Name: "Root", Email: "admin@shop.test", Password: "s3cretpass",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
