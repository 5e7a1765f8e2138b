package domain

import "time"

// Product categories and sizes accepted by the catalog.
var (
	ProductCategories = []string{"tops", "bottoms", "accessories"}
	ProductSizes      = []string{"XS", "S", "M", "L", "XL", "XXL"}
)

type Product struct {
	ProductID     string    `json:"id" dynamodbav:"product_id"`
	Name          string    `json:"name" dynamodbav:"name"`
	Description   string    `json:"description" dynamodbav:"description"`
	SearchText    string    `json:"-" dynamodbav:"search_text"` // lower-cased name + description
	Category      string    `json:"category" dynamodbav:"category"`
	Price         float64   `json:"price" dynamodbav:"price"`
	DiscountPrice float64   `json:"discountPrice,omitempty" dynamodbav:"discount_price"`
	Stock         int       `json:"stock" dynamodbav:"stock"`
	Images        []string  `json:"images" dynamodbav:"images"`
	Sizes         []string  `json:"sizes" dynamodbav:"sizes"`
	Colors        []string  `json:"colors" dynamodbav:"colors"`
	Rating        float64   `json:"rating" dynamodbav:"rating"`
	Reviews       int       `json:"reviews" dynamodbav:"reviews"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// UnitPrice is the price a cart line is charged at.
func (p *Product) UnitPrice() float64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.Price
}

type ProductInput struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Description   string   `json:"description" validate:"required"`
	Category      string   `json:"category" validate:"required,oneof=tops bottoms accessories"`
	Price         float64  `json:"price" validate:"gte=0"`
	DiscountPrice float64  `json:"discountPrice" validate:"gte=0"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Images        []string `json:"images" validate:"required,min=1"`
	Sizes         []string `json:"sizes" validate:"omitempty,dive,oneof=XS S M L XL XXL"`
	Colors        []string `json:"colors"`
}

type UpdateProductRequest struct {
	Name          *string   `json:"name" validate:"omitempty,max=100"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category" validate:"omitempty,oneof=tops bottoms accessories"`
	Price         *float64  `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice *float64  `json:"discountPrice" validate:"omitempty,gte=0"`
	Stock         *int      `json:"stock" validate:"omitempty,gte=0"`
	Images        *[]string `json:"images"`
	Sizes         *[]string `json:"sizes" validate:"omitempty,dive,oneof=XS S M L XL XXL"`
	Colors        *[]string `json:"colors"`
	Rating        *float64  `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}
