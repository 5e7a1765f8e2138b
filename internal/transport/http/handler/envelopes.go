package handler

import (
	"encoding/json"
	"net/http"

	"github.com/storefront-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// VerificationEnvelope wraps request-verification and check-email-verification responses.
type VerificationEnvelope struct {
	Message           string `json:"message"`
	Email             string `json:"email"`
	IsVerified        *bool  `json:"isVerified,omitempty"`
	VerificationProof string `json:"verificationProof,omitempty"`
}

// RegisterEnvelope wraps the account-created response.
type RegisterEnvelope struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	UserID  string `json:"userId"`
}

// AuthEnvelope wraps login responses.
type AuthEnvelope struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

type ProductEnvelope struct {
	Message string          `json:"message,omitempty"`
	Product *domain.Product `json:"product"`
}

type ProductListEnvelope struct {
	Message    string            `json:"message,omitempty"`
	Products   []domain.Product  `json:"products"`
	Pagination domain.Pagination `json:"pagination"`
}

type CartEnvelope struct {
	Message string       `json:"message,omitempty"`
	Cart    *domain.Cart `json:"cart"`
}

type OrderEnvelope struct {
	Message string        `json:"message,omitempty"`
	Order   *domain.Order `json:"order"`
}

type OrderListEnvelope struct {
	Message string         `json:"message,omitempty"`
	Orders  []domain.Order `json:"orders"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

// decode reads a JSON request body into v and reports a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func boolPtr(b bool) *bool { return &b }
