package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/validate"
)

var (
	errProductNotFound = domain.NewError(domain.ErrNotFound, "Product not found")
	errCartNotFound    = domain.NewError(domain.ErrNotFound, "Cart not found")
	errItemNotFound    = domain.NewError(domain.ErrNotFound, "Item not found in cart")
	errInsufficient    = domain.NewError(domain.ErrBadRequest, "Insufficient stock")
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Add(ctx context.Context, userID string, req domain.AddToCartRequest) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

type cartStore interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Put(ctx context.Context, c *domain.Cart) error
}

type productLookup interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]*domain.Product, error)
}

type service struct {
	carts    cartStore
	products productLookup
	now      func() time.Time
}

type ServiceDeps struct {
	CartRepo    cartStore
	ProductRepo productLookup
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{carts: deps.CartRepo, products: deps.ProductRepo, now: deps.Now}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Get returns the user's cart, creating an empty one on first access.
func (s *service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		c = s.empty(userID)
		if err := s.carts.Put(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	return c, s.populate(ctx, c)
}

func (s *service) Add(ctx context.Context, userID string, req domain.AddToCartRequest) (*domain.Cart, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}
	p, err := s.products.Get(ctx, req.ProductID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errProductNotFound
	}
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		c = s.empty(userID)
	} else if err != nil {
		return nil, err
	}

	var line *domain.CartItem
	for i := range c.Items {
		it := &c.Items[i]
		if it.ProductID == req.ProductID && it.Size == req.Size && it.Color == req.Color {
			line = it
			break
		}
	}
	// Every variant draws on the same product stock.
	if p.Stock < reserved(c.Items, req.ProductID, "")+req.Quantity {
		return nil, errInsufficient
	}

	if line != nil {
		line.Quantity += req.Quantity
	} else {
		c.Items = append(c.Items, domain.CartItem{
			ItemID:    uuid.NewString(),
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Size:      req.Size,
			Color:     req.Color,
			Price:     p.UnitPrice(),
		})
	}
	return s.save(ctx, c)
}

// UpdateItem sets a line's quantity; zero or less removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	c, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(c.Items, itemID)
	if idx < 0 {
		return nil, errItemNotFound
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		it := c.Items[idx]
		p, err := s.products.Get(ctx, it.ProductID)
		if err == nil && p.Stock < reserved(c.Items, it.ProductID, it.ItemID)+quantity {
			return nil, errInsufficient
		}
		c.Items[idx].Quantity = quantity
	}
	return s.save(ctx, c)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	c, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(c.Items, itemID)
	if idx < 0 {
		return nil, errItemNotFound
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return s.save(ctx, c)
}

func (s *service) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Items = []domain.CartItem{}
	return s.save(ctx, c)
}

func (s *service) existing(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errCartNotFound
	}
	return c, err
}

func (s *service) save(ctx context.Context, c *domain.Cart) (*domain.Cart, error) {
	c.CalculateTotal()
	c.UpdatedAt = s.now().UTC()
	if err := s.carts.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, s.populate(ctx, c)
}

func (s *service) empty(userID string) *domain.Cart {
	return &domain.Cart{UserID: userID, Items: []domain.CartItem{}, UpdatedAt: s.now().UTC()}
}

// populate embeds the current product documents into the cart lines.
func (s *service) populate(ctx context.Context, c *domain.Cart) error {
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	if len(c.Items) == 0 {
		return nil
	}
	ids := make([]string, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for i := range c.Items {
		c.Items[i].Product = products[c.Items[i].ProductID]
	}
	return nil
}

func indexOf(items []domain.CartItem, itemID string) int {
	for i, it := range items {
		if it.ItemID == itemID {
			return i
		}
	}
	return -1
}

// reserved sums the quantity held by lines of productID, skipping exceptItemID.
func reserved(items []domain.CartItem, productID, exceptItemID string) int {
	n := 0
	for _, it := range items {
		if it.ProductID == productID && it.ItemID != exceptItemID {
			n += it.Quantity
		}
	}
	return n
}
