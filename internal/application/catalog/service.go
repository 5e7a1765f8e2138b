package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-api/internal/domain"
	s3infra "github.com/storefront-api/internal/infrastructure/s3"
	"github.com/storefront-api/internal/pkg/id"
	"github.com/storefront-api/internal/pkg/logger"
	"github.com/storefront-api/internal/pkg/validate"
)

const (
	defaultPage  = 1
	defaultLimit = 12
	maxLimit     = 100
)

// Attribute names for partial product updates.
const (
	fieldName          = "name"
	fieldDescription   = "description"
	fieldSearchText    = "search_text"
	fieldCategory      = "category"
	fieldPrice         = "price"
	fieldDiscountPrice = "discount_price"
	fieldStock         = "stock"
	fieldImages        = "images"
	fieldSizes         = "sizes"
	fieldColors        = "colors"
	fieldRating        = "rating"
)

var errProductNotFound = domain.NewError(domain.ErrNotFound, "Product not found")

type Service interface {
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, domain.Pagination, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, productID string) error
	UploadImage(ctx context.Context, productID, filename string, r io.Reader) (*domain.Product, error)
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, objectURL string) error
}

type service struct {
	repo   productStore
	images imageStore
	log    *zap.Logger
}

type ServiceDeps struct {
	ProductRepo productStore
	Images      imageStore // optional; uploads are rejected when nil
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.ProductRepo, images: deps.Images, log: logger.WithModule("catalog")}
}

func (s *service) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, domain.Pagination, error) {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.Pagination{
		Total: total,
		Page:  f.Page,
		Pages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}, nil
}

func (s *service) Get(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errProductNotFound
	}
	return p, err
}

func (s *service) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}
	if len(in.Sizes) == 0 {
		in.Sizes = []string{"M"}
	}
	if len(in.Colors) == 0 {
		in.Colors = []string{"Black"}
	}
	now := time.Now().UTC()
	p := &domain.Product{
		ProductID:     id.New(),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Category:      in.Category,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
		Images:        in.Images,
		Sizes:         in.Sizes,
		Colors:        in.Colors,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.SearchText = searchText(p.Name, p.Description)
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.NewError(domain.ErrBadRequest, err.Error())
	}
	current, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	name, desc := current.Name, current.Description
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.NewError(domain.ErrBadRequest, "name cannot be empty")
		}
		updates[fieldName] = name
	}
	if req.Description != nil {
		desc = *req.Description
		updates[fieldDescription] = desc
	}
	if req.Name != nil || req.Description != nil {
		updates[fieldSearchText] = searchText(name, desc)
	}
	if req.Category != nil {
		updates[fieldCategory] = *req.Category
	}
	if req.Price != nil {
		updates[fieldPrice] = *req.Price
	}
	if req.DiscountPrice != nil {
		updates[fieldDiscountPrice] = *req.DiscountPrice
	}
	if req.Stock != nil {
		updates[fieldStock] = *req.Stock
	}
	if req.Images != nil {
		updates[fieldImages] = *req.Images
	}
	if req.Sizes != nil {
		updates[fieldSizes] = *req.Sizes
	}
	if req.Colors != nil {
		updates[fieldColors] = *req.Colors
	}
	if req.Rating != nil {
		updates[fieldRating] = *req.Rating
	}
	if len(updates) == 0 {
		return current, nil
	}

	if err := s.repo.Update(ctx, productID, updates); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.Get(ctx, productID)
}

// Delete removes the product and, best effort, its uploaded images.
func (s *service) Delete(ctx context.Context, productID string) error {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errProductNotFound
		}
		return err
	}
	if s.images != nil {
		for _, u := range p.Images {
			if err := s.images.Delete(ctx, u); err != nil {
				s.log.Warn("delete product image", zap.String("product_id", productID), zap.Error(err))
			}
		}
	}
	return nil
}

// UploadImage stores an image for the product and appends its URL.
func (s *service) UploadImage(ctx context.Context, productID, filename string, r io.Reader) (*domain.Product, error) {
	if s.images == nil {
		return nil, domain.NewError(domain.ErrBadRequest, "Image uploads are not configured")
	}
	contentType, ok := s3infra.DetectContentType(filename)
	if !ok {
		return nil, domain.NewError(domain.ErrBadRequest, "Only jpg, png, webp and gif images are allowed")
	}
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, s3infra.ImageKey(productID, id.New(), filename), r, contentType)
	if err != nil {
		return nil, err
	}
	images := append(append([]string{}, p.Images...), url)
	if err := s.repo.Update(ctx, productID, map[string]interface{}{fieldImages: images}); err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

func searchText(name, description string) string {
	return strings.ToLower(name + " " + description)
}
