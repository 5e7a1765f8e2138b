package domain

import "time"

// VerificationToken is a pending proof-of-possession for an email address.
// The table is keyed by email, so at most one live token exists per address.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type VerificationToken struct {
	Email     string    `json:"email" dynamodbav:"email"`
	Token     string    `json:"-" dynamodbav:"token"`
	ExpiresAt int64     `json:"expiresAt" dynamodbav:"expires_at"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// Expired reports whether the token is past its expiry at now.
func (v *VerificationToken) Expired(now time.Time) bool {
	return now.Unix() > v.ExpiresAt
}

type RequestVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CheckVerificationRequest struct {
	Token string `json:"token" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}
