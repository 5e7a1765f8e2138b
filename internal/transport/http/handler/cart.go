package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storefront-api/internal/application/cart"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/transport/http/middleware"
)

// CartHandler handles the authenticated user's cart.
type CartHandler struct {
	svc cart.Service
}

func NewCartHandler(svc cart.Service) *CartHandler { return &CartHandler{svc: svc} }

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CartEnvelope{Message: "Cart fetched successfully", Cart: c})
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.AddToCartRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Add(r.Context(), userID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CartEnvelope{Message: "Item added to cart", Cart: c})
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.UpdateCartItemRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.UpdateItem(r.Context(), userID, chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CartEnvelope{Message: "Cart updated successfully", Cart: c})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	c, err := h.svc.RemoveItem(r.Context(), userID, chi.URLParam(r, "itemId"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CartEnvelope{Message: "Item removed from cart", Cart: c})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Clear(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CartEnvelope{Message: "Cart cleared successfully", Cart: c})
}

// currentUser returns the caller's user id or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return "", false
	}
	return claims.UserID, true
}
