package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/storefront-api/internal/domain"
)

type mockCartSvc struct{ mock.Mock }

func (m *mockCartSvc) cart(args mock.Arguments) (*domain.Cart, error) {
	if c, _ := args.Get(0).(*domain.Cart); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartSvc) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID))
}
func (m *mockCartSvc) Add(ctx context.Context, userID string, req domain.AddToCartRequest) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, req))
}
func (m *mockCartSvc) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, itemID, quantity))
}
func (m *mockCartSvc) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID, itemID))
}
func (m *mockCartSvc) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, userID))
}

func TestCartGet_RequiresClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	NewCartHandler(&mockCartSvc{}).Get(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCartAdd(t *testing.T) {
	svc := &mockCartSvc{}
	svc.On("Add", mock.Anything, "u1", domain.AddToCartRequest{ProductID: "p1", Quantity: 2, Size: "M"}).
		Return(&domain.Cart{UserID: "u1", TotalPrice: 40}, nil)

	rr := httptest.NewRecorder()
	req := asUser(jsonReq(http.MethodPost, "/", map[string]interface{}{"productId": "p1", "quantity": 2, "size": "M"}), "u1", domain.RoleUser)
	NewCartHandler(svc).Add(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Item added to cart", decodeBody(t, rr)["message"])
	svc.AssertExpectations(t)
}

func TestCartAdd_InsufficientStock(t *testing.T) {
	svc := &mockCartSvc{}
	svc.On("Add", mock.Anything, "u1", mock.Anything).Return(nil, domain.NewError(domain.ErrBadRequest, "Insufficient stock"))

	rr := httptest.NewRecorder()
	req := asUser(jsonReq(http.MethodPost, "/", map[string]interface{}{"productId": "p1", "quantity": 99}), "u1", domain.RoleUser)
	NewCartHandler(svc).Add(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Insufficient stock", decodeBody(t, rr)["message"])
}

func TestCartUpdateItem(t *testing.T) {
	svc := &mockCartSvc{}
	svc.On("UpdateItem", mock.Anything, "u1", "i1", 0).Return(&domain.Cart{UserID: "u1"}, nil)

	rr := httptest.NewRecorder()
	req := asUser(jsonReq(http.MethodPut, "/", map[string]int{"quantity": 0}), "u1", domain.RoleUser)
	NewCartHandler(svc).UpdateItem(rr, withParam(req, "itemId", "i1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestCartRemoveItem_NotFound(t *testing.T) {
	svc := &mockCartSvc{}
	svc.On("RemoveItem", mock.Anything, "u1", "i9").Return(nil, domain.NewError(domain.ErrNotFound, "Item not found in cart"))

	rr := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodDelete, "/", nil), "u1", domain.RoleUser)
	NewCartHandler(svc).RemoveItem(rr, withParam(req, "itemId", "i9"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Item not found in cart", decodeBody(t, rr)["message"])
}

func TestCartClear(t *testing.T) {
	svc := &mockCartSvc{}
	svc.On("Clear", mock.Anything, "u1").Return(&domain.Cart{UserID: "u1", Items: []domain.CartItem{}}, nil)

	rr := httptest.NewRecorder()
	NewCartHandler(svc).Clear(rr, asUser(httptest.NewRequest(http.MethodDelete, "/", nil), "u1", domain.RoleUser))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Cart cleared successfully", decodeBody(t, rr)["message"])
}
