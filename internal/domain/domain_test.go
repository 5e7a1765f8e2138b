package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCart_CalculateTotal(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{Price: 20, Quantity: 2},
		{Price: 9.5, Quantity: 1},
	}}
	c.CalculateTotal()
	assert.InDelta(t, 49.5, c.TotalPrice, 1e-9)

	c.Items = nil
	c.CalculateTotal()
	assert.Zero(t, c.TotalPrice)
}

func TestProduct_UnitPrice(t *testing.T) {
	assert.Equal(t, 30.0, (&Product{Price: 30}).UnitPrice())
	assert.Equal(t, 25.0, (&Product{Price: 30, DiscountPrice: 25}).UnitPrice())
}

func TestVerificationToken_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := &VerificationToken{ExpiresAt: now.Unix()}

	assert.False(t, v.Expired(now))
	assert.True(t, v.Expired(now.Add(time.Second)))
	assert.False(t, v.Expired(now.Add(-time.Hour)))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@example.com", NormalizeEmail("  Ann@Example.COM "))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}
