package handler

import (
	"errors"
	"net/http"

	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/application/user"
	"github.com/storefront-api/internal/application/verification"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/transport/http/middleware"
)

// AuthHandler serves the verification, registration, login and profile endpoints.
type AuthHandler struct {
	verify verification.Service
	users  user.Service
	auth   auth.Service
}

func NewAuthHandler(verify verification.Service, users user.Service, authSvc auth.Service) *AuthHandler {
	return &AuthHandler{verify: verify, users: users, auth: authSvc}
}

func (h *AuthHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	var req domain.RequestVerificationRequest
	if !decode(w, r, &req) {
		return
	}
	email, err := h.verify.RequestVerification(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerificationEnvelope{
		Message: "Verification email sent successfully",
		Email:   email,
	})
}

func (h *AuthHandler) CheckVerification(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckVerificationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Token == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Token and email are required")
		return
	}
	res, err := h.verify.CheckVerification(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerificationEnvelope{
		Message:           "Email verified successfully",
		Email:             res.Email,
		IsVerified:        boolPtr(true),
		VerificationProof: res.Proof,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterEnvelope{
		Message: "Account created successfully",
		Email:   u.Email,
		UserID:  u.UserID,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if errors.Is(err, domain.ErrEmailNotVerified) {
		writeJSON(w, http.StatusForbidden, VerificationEnvelope{
			Message:    "Please verify your email before logging in",
			Email:      domain.NormalizeEmail(req.Email),
			IsVerified: boolPtr(false),
		})
		return
	}
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "Login successful", Token: res.Token, User: res.User})
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.auth.AdminLogin(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "Admin login successful", Token: res.Token, User: res.User})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleLoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.auth.GoogleLogin(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "Login successful", Token: res.Token, User: res.User})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{User: u})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	var req domain.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.users.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "Profile updated successfully", User: u})
}
