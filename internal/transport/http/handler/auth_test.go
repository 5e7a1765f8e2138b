package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/application/user"
	"github.com/storefront-api/internal/application/verification"
	"github.com/storefront-api/internal/domain"
	jwtinfra "github.com/storefront-api/internal/infrastructure/jwt"
	"github.com/storefront-api/internal/transport/http/middleware"
)

// --- mocks ---

type mockVerifySvc struct{ mock.Mock }

func (m *mockVerifySvc) RequestVerification(ctx context.Context, req domain.RequestVerificationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockVerifySvc) CheckVerification(ctx context.Context, req domain.CheckVerificationRequest) (*verification.CheckResult, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*verification.CheckResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) CreateAdmin(ctx context.Context, req user.CreateAdminRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) result(args mock.Arguments) (*auth.Result, error) {
	if res, _ := args.Get(0).(*auth.Result); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Login(ctx context.Context, req domain.LoginRequest) (*auth.Result, error) {
	return m.result(m.Called(ctx, req))
}

func (m *mockAuthSvc) AdminLogin(ctx context.Context, req domain.AdminLoginRequest) (*auth.Result, error) {
	return m.result(m.Called(ctx, req))
}

func (m *mockAuthSvc) GoogleLogin(ctx context.Context, req domain.GoogleLoginRequest) (*auth.Result, error) {
	return m.result(m.Called(ctx, req))
}

// --- helpers ---

func jsonReq(method, target string, v interface{}) *http.Request {
	body, _ := json.Marshal(v)
	return httptest.NewRequest(method, target, bytes.NewReader(body))
}

// asUser attaches claims the way middleware.Auth would.
func asUser(r *http.Request, userID, role string) *http.Request {
	return r.WithContext(middleware.WithClaims(r.Context(), &jwtinfra.Claims{UserID: userID, Role: role}))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

func newAuthHandler() (*AuthHandler, *mockVerifySvc, *mockUserSvc, *mockAuthSvc) {
	v, u, a := &mockVerifySvc{}, &mockUserSvc{}, &mockAuthSvc{}
	return NewAuthHandler(v, u, a), v, u, a
}

// --- request-verification ---

func TestRequestVerification_Sent(t *testing.T) {
	h, v, _, _ := newAuthHandler()
	v.On("RequestVerification", mock.Anything, domain.RequestVerificationRequest{Email: "New@Example.com"}).
		Return("new@example.com", nil)

	rr := httptest.NewRecorder()
	h.RequestVerification(rr, jsonReq(http.MethodPost, "/api/auth/request-verification", map[string]string{"email": "New@Example.com"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Verification email sent successfully", body["message"])
	assert.Equal(t, "new@example.com", body["email"])
	_, hasToken := body["token"]
	assert.False(t, hasToken)
	v.AssertExpectations(t)
}

func TestRequestVerification_AlreadyRegistered(t *testing.T) {
	h, v, _, _ := newAuthHandler()
	v.On("RequestVerification", mock.Anything, mock.Anything).
		Return("", domain.NewError(domain.ErrDuplicate, "Email already registered"))

	rr := httptest.NewRecorder()
	h.RequestVerification(rr, jsonReq(http.MethodPost, "/", map[string]string{"email": "a@b.test"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email already registered", decodeBody(t, rr)["message"])
}

func TestRequestVerification_DeliveryFailure(t *testing.T) {
	h, v, _, _ := newAuthHandler()
	v.On("RequestVerification", mock.Anything, mock.Anything).
		Return("", domain.NewError(domain.ErrDelivery, "Failed to send verification email"))

	rr := httptest.NewRecorder()
	h.RequestVerification(rr, jsonReq(http.MethodPost, "/", map[string]string{"email": "a@b.test"}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to send verification email", decodeBody(t, rr)["message"])
}

func TestRequestVerification_InvalidBody(t *testing.T) {
	h, _, _, _ := newAuthHandler()

	rr := httptest.NewRecorder()
	h.RequestVerification(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("not-json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- check-email-verification ---

func TestCheckVerification_Valid(t *testing.T) {
	h, v, _, _ := newAuthHandler()
	v.On("CheckVerification", mock.Anything, domain.CheckVerificationRequest{Token: "tok", Email: "a@b.test"}).
		Return(&verification.CheckResult{Email: "a@b.test", Proof: "proof"}, nil)

	rr := httptest.NewRecorder()
	h.CheckVerification(rr, jsonReq(http.MethodPost, "/", map[string]string{"token": "tok", "email": "a@b.test"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Email verified successfully", body["message"])
	assert.Equal(t, true, body["isVerified"])
	assert.Equal(t, "proof", body["verificationProof"])
}

func TestCheckVerification_Invalid(t *testing.T) {
	h, v, _, _ := newAuthHandler()
	v.On("CheckVerification", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidToken)

	rr := httptest.NewRecorder()
	h.CheckVerification(rr, jsonReq(http.MethodPost, "/", map[string]string{"token": "tok", "email": "a@b.test"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid or expired verification token", decodeBody(t, rr)["message"])
}

func TestCheckVerification_MissingFields(t *testing.T) {
	h, v, _, _ := newAuthHandler()

	rr := httptest.NewRecorder()
	h.CheckVerification(rr, jsonReq(http.MethodPost, "/", map[string]string{"token": "tok"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	v.AssertNotCalled(t, "CheckVerification", mock.Anything, mock.Anything)
}

// --- register ---

func TestRegister_Created(t *testing.T) {
	h, _, u, _ := newAuthHandler()
	u.On("Register", mock.Anything, mock.AnythingOfType("domain.RegisterRequest")).
		Return(&domain.User{UserID: "u1", Email: "a@b.test"}, nil)

	rr := httptest.NewRecorder()
	h.Register(rr, jsonReq(http.MethodPost, "/", map[string]string{"name": "A", "email": "a@b.test", "password": "secret1"}))

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp RegisterEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, RegisterEnvelope{Message: "Account created successfully", Email: "a@b.test", UserID: "u1"}, resp)
}

func TestRegister_Duplicate(t *testing.T) {
	h, _, u, _ := newAuthHandler()
	u.On("Register", mock.Anything, mock.Anything).Return(nil, domain.NewError(domain.ErrDuplicate, "User already exists"))

	rr := httptest.NewRecorder()
	h.Register(rr, jsonReq(http.MethodPost, "/", map[string]string{"name": "A", "email": "a@b.test", "password": "secret1"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "User already exists", decodeBody(t, rr)["message"])
}

// --- login ---

func TestLogin_Success(t *testing.T) {
	h, _, _, a := newAuthHandler()
	a.On("Login", mock.Anything, domain.LoginRequest{Email: "a@b.test", Password: "pw"}).
		Return(&auth.Result{Token: "jwt", User: &domain.User{UserID: "u1", Email: "a@b.test", PasswordHash: "hash"}}, nil)

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(http.MethodPost, "/", domain.LoginRequest{Email: "a@b.test", Password: "pw"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hash")
	body := decodeBody(t, rr)
	assert.Equal(t, "jwt", body["token"])
}

func TestLogin_Unverified(t *testing.T) {
	h, _, _, a := newAuthHandler()
	a.On("Login", mock.Anything, mock.Anything).
		Return(nil, domain.NewError(domain.ErrEmailNotVerified, "Please verify your email before logging in"))

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(http.MethodPost, "/", domain.LoginRequest{Email: "A@B.test", Password: "pw"}))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "a@b.test", body["email"])
	assert.Equal(t, false, body["isVerified"])
}

func TestLogin_BadCredentials(t *testing.T) {
	h, _, _, a := newAuthHandler()
	a.On("Login", mock.Anything, mock.Anything).Return(nil, domain.NewError(domain.ErrUnauthorized, "Invalid credentials"))

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(http.MethodPost, "/", domain.LoginRequest{Email: "a@b.test", Password: "pw"}))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rr)["message"])
}

// --- me / profile ---

func TestMe_MissingClaims(t *testing.T) {
	h, _, _, _ := newAuthHandler()

	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMe_ReturnsUser(t *testing.T) {
	h, _, u, _ := newAuthHandler()
	u.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Name: "Ann"}, nil)

	rr := httptest.NewRecorder()
	h.Me(rr, asUser(httptest.NewRequest(http.MethodGet, "/", nil), "u1", domain.RoleUser))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ann", decodeBody(t, rr)["user"].(map[string]interface{})["name"])
}

func TestUpdateProfile(t *testing.T) {
	h, _, u, _ := newAuthHandler()
	name := "Bea"
	u.On("UpdateProfile", mock.Anything, "u1", domain.UpdateProfileRequest{Name: &name}).
		Return(&domain.User{UserID: "u1", Name: "Bea"}, nil)

	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, asUser(jsonReq(http.MethodPut, "/", map[string]string{"name": "Bea"}), "u1", domain.RoleUser))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Profile updated successfully", decodeBody(t, rr)["message"])
	u.AssertExpectations(t)
}
