package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/id"
	"github.com/storefront-api/internal/pkg/logger"
	"github.com/storefront-api/internal/pkg/metrics"
	"github.com/storefront-api/internal/pkg/validate"
)

var (
	errCartEmpty     = domain.NewError(domain.ErrBadRequest, "Cart is empty")
	errOrderNotFound = domain.NewError(domain.ErrNotFound, "Order not found")
	errNotOwner      = domain.NewError(domain.ErrForbidden, "Not authorized")
	errCannotCancel  = domain.NewError(domain.ErrBadRequest, "Cannot cancel this order")
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error)
	ListMine(ctx context.Context, userID string) ([]domain.Order, error)
	GetMine(ctx context.Context, userID, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, req domain.UpdateOrderStatusRequest) (*domain.Order, error)
	Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error)
}

type orderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	Cancel(ctx context.Context, orderID string, restock map[string]int, at time.Time) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}

type cartLookup interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
}

type productLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*domain.Product, error)
}

type userLookup interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	orders   orderStore
	carts    cartLookup
	products productLookup
	users    userLookup
	sms      smsSender
	siteName string
	now      func() time.Time
	log      *zap.Logger
}

// ServiceDeps wires the order service. SMS is optional; when nil no
// confirmation text is sent.
type ServiceDeps struct {
	OrderRepo   orderStore
	CartRepo    cartLookup
	ProductRepo productLookup
	UserRepo    userLookup
	SMS         smsSender
	SiteName    string
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		orders:   deps.OrderRepo,
		carts:    deps.CartRepo,
		products: deps.ProductRepo,
		users:    deps.UserRepo,
		sms:      deps.SMS,
		siteName: deps.SiteName,
		now:      deps.Now,
		log:      logger.WithModule("order"),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.siteName == "" {
		s.siteName = "FashionHub"
	}
	return s
}

// Create turns the user's cart into an order. Stock is checked up front for a
// readable error and enforced again inside the write transaction.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && len(c.Items) == 0) {
		return nil, errCartEmpty
	}
	if err != nil {
		return nil, err
	}

	products, err := s.products.GetMany(ctx, productIDs(c.Items))
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(c.Items))
	wanted := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, domain.NewError(domain.ErrNotFound, "Product not found")
		}
		wanted[it.ProductID] += it.Quantity
		if p.Stock < wanted[it.ProductID] {
			return nil, &domain.StockError{ProductID: p.ProductID, Name: p.Name}
		}
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Product:   p,
			Name:      p.Name,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			Price:     it.Price,
		})
	}

	now := s.now().UTC()
	o := &domain.Order{
		OrderID:         id.New(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		TotalPrice:      c.TotalPrice,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   "completed",
		Status:          domain.OrderProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	metrics.OrdersPlaced.Inc()
	s.log.Info("order placed", zap.String("order_id", o.OrderID), zap.String("user_id", userID), zap.Int("items", len(items)))

	s.notify(ctx, o)
	return o, nil
}

// notify texts an order confirmation to the buyer. Failures are logged only.
func (s *service) notify(ctx context.Context, o *domain.Order) {
	if s.sms == nil || s.users == nil {
		return
	}
	u, err := s.users.Get(ctx, o.UserID)
	if err != nil || u.Phone == nil || *u.Phone == "" {
		return
	}
	msg := fmt.Sprintf("%s: your order %s for $%.2f has been received and is being processed.", s.siteName, o.OrderID, o.TotalPrice)
	if err := s.sms.SendSMS(ctx, *u.Phone, msg); err != nil {
		s.log.Warn("order sms failed", zap.String("order_id", o.OrderID), zap.Error(err))
	}
}

func (s *service) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, orders...); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	o, err := s.owned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, *o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID string, req domain.UpdateOrderStatusRequest) (*domain.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}
	if err := s.orders.UpdateStatus(ctx, orderID, req.Status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errOrderNotFound
		}
		return nil, err
	}
	return s.get(ctx, orderID)
}

// Cancel cancels an undelivered order and returns its quantities to stock.
// Products deleted since the order was placed are skipped.
func (s *service) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	o, err := s.owned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == domain.OrderDelivered || o.Status == domain.OrderCancelled {
		return nil, errCannotCancel
	}

	ids := make([]string, len(o.Items))
	for i, it := range o.Items {
		ids[i] = it.ProductID
	}
	existing, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	restock := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		if _, ok := existing[it.ProductID]; ok {
			restock[it.ProductID] += it.Quantity
		}
	}

	now := s.now().UTC()
	if err := s.orders.Cancel(ctx, orderID, restock, now); err != nil {
		return nil, err
	}
	o.Status = domain.OrderCancelled
	o.UpdatedAt = now
	return o, nil
}

func (s *service) get(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errOrderNotFound
	}
	return o, err
}

func (s *service) owned(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	o, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, errNotOwner
	}
	return o, nil
}

// populate embeds current product documents into order lines.
func (s *service) populate(ctx context.Context, orders ...domain.Order) error {
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].Product = products[orders[i].Items[j].ProductID]
		}
	}
	return nil
}

func productIDs(items []domain.CartItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	return ids
}
