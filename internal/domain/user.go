package domain

import (
	"strings"
	"time"
)

// User is the single principal record. Role tags it as a standard shopper or an
// administrator; AdminID and Permissions are only populated for administrators.
type User struct {
	UserID          string     `json:"id" dynamodbav:"user_id"`
	Name            string     `json:"name" dynamodbav:"name"`
	Email           string     `json:"email" dynamodbav:"email"`
	Phone           *string    `json:"phone,omitempty" dynamodbav:"phone"`
	Address         *Address   `json:"address,omitempty" dynamodbav:"address"`
	PasswordHash    string     `json:"-" dynamodbav:"password_hash"`
	Role            string     `json:"role" dynamodbav:"role"`
	AdminID         string     `json:"adminId,omitempty" dynamodbav:"admin_id,omitempty"`
	Permissions     []string   `json:"permissions,omitempty" dynamodbav:"permissions,omitempty"`
	IsEmailVerified bool       `json:"isEmailVerified" dynamodbav:"is_email_verified"`
	AuthProvider    string     `json:"authProvider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub       string     `json:"-" dynamodbav:"google_sub,omitempty"`
	LastLogin       *time.Time `json:"lastLogin,omitempty" dynamodbav:"last_login"`
	CreatedAt       time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

// IsAdmin reports whether the principal carries the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Address struct {
	Street  string `json:"street,omitempty" dynamodbav:"street"`
	City    string `json:"city,omitempty" dynamodbav:"city"`
	State   string `json:"state,omitempty" dynamodbav:"state"`
	ZipCode string `json:"zipCode,omitempty" dynamodbav:"zip_code"`
	Country string `json:"country,omitempty" dynamodbav:"country"`
}

// RegisterRequest completes an account after the email was verified.
// VerificationProof is only checked when proof enforcement is enabled.
type RegisterRequest struct {
	Name              string  `json:"name" validate:"required"`
	Email             string  `json:"email" validate:"required,email"`
	Password          string  `json:"password" validate:"required,min=6,max=72"`
	Phone             *string `json:"phone"`
	VerificationProof string  `json:"verificationProof"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginRequest struct {
	AdminID  string `json:"adminId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string  `json:"name"`
	Phone   *string  `json:"phone"`
	Address *Address `json:"address"`
}

// NormalizeEmail is the canonical form used for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
