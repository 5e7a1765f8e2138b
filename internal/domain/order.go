package domain

import "time"

// Order statuses.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

type Order struct {
	OrderID         string      `json:"id" dynamodbav:"order_id"`
	UserID          string      `json:"user" dynamodbav:"user_id"`
	Items           []OrderItem `json:"items" dynamodbav:"items"`
	ShippingAddress Address     `json:"shippingAddress" dynamodbav:"shipping_address"`
	TotalPrice      float64     `json:"totalPrice" dynamodbav:"total_price"`
	PaymentMethod   string      `json:"paymentMethod" dynamodbav:"payment_method"`
	PaymentStatus   string      `json:"paymentStatus" dynamodbav:"payment_status"`
	Status          string      `json:"status" dynamodbav:"status"`
	CreatedAt       time.Time   `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" dynamodbav:"updated_at"`
}

type OrderItem struct {
	ProductID string   `json:"productId" dynamodbav:"product_id"`
	Product   *Product `json:"product,omitempty" dynamodbav:"-"`
	Name      string   `json:"name" dynamodbav:"name"`
	Quantity  int      `json:"quantity" dynamodbav:"quantity"`
	Size      string   `json:"size,omitempty" dynamodbav:"size"`
	Color     string   `json:"color,omitempty" dynamodbav:"color"`
	Price     float64  `json:"price" dynamodbav:"price"`
}

type CreateOrderRequest struct {
	ShippingAddress Address `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}
