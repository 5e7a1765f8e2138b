package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, expiry, proofTTL time.Duration) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderFromKeys(key, &key.PublicKey, expiry, proofTTL)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Hour, time.Minute)
	tok, err := p.Sign("u1", "admin")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute, time.Minute)
	tok, err := p.Sign("u1", "user")
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_OtherKeyRejected(t *testing.T) {
	p1 := newTestProvider(t, time.Hour, time.Minute)
	p2 := newTestProvider(t, time.Hour, time.Minute)
	tok, err := p1.Sign("u1", "user")
	require.NoError(t, err)

	_, err = p2.Verify(tok)
	assert.Error(t, err)
}

func TestProof_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Hour, time.Minute)
	proof, err := p.SignProof("a@b.com")
	require.NoError(t, err)

	email, err := p.VerifyProof(proof)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)
}

func TestProof_NotAcceptedAsAccessToken(t *testing.T) {
	p := newTestProvider(t, time.Hour, time.Minute)
	proof, err := p.SignProof("a@b.com")
	require.NoError(t, err)

	_, err = p.Verify(proof)
	assert.Error(t, err)
}

func TestAccessToken_NotAcceptedAsProof(t *testing.T) {
	p := newTestProvider(t, time.Hour, time.Minute)
	tok, err := p.Sign("u1", "user")
	require.NoError(t, err)

	_, err = p.VerifyProof(tok)
	assert.Error(t, err)
}
