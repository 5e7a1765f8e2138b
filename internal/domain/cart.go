package domain

import "time"

type Cart struct {
	UserID     string     `json:"user" dynamodbav:"user_id"`
	Items      []CartItem `json:"items" dynamodbav:"items"`
	TotalPrice float64    `json:"totalPrice" dynamodbav:"total_price"`
	UpdatedAt  time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

type CartItem struct {
	ItemID    string   `json:"id" dynamodbav:"item_id"`
	ProductID string   `json:"productId" dynamodbav:"product_id"`
	Product   *Product `json:"product,omitempty" dynamodbav:"-"`
	Quantity  int      `json:"quantity" dynamodbav:"quantity"`
	Size      string   `json:"size,omitempty" dynamodbav:"size"`
	Color     string   `json:"color,omitempty" dynamodbav:"color"`
	Price     float64  `json:"price" dynamodbav:"price"`
}

// CalculateTotal recomputes TotalPrice from the line items.
func (c *Cart) CalculateTotal() {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	c.TotalPrice = total
}

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
