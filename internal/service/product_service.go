package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TopProductsLimit caps the highest-rated product listing.
	TopProductsLimit = 3

	topProductsCacheKey = "products:top"
	topProductsCacheTTL = time.Minute
)

var (
	ErrPriceZero        = errors.New("price cannot be zero")
	ErrStockZero        = errors.New("stock cannot be zero")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
)

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Products []*domain.Product `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

// UpdateProductInput carries the fields of a product update. Name,
// Price and Stock always overwrite; the pointer fields fall back to
// the stored values when absent.
type UpdateProductInput struct {
	Name        string
	Price       float64
	Stock       int
	Description *string
	ImageURL    *string
	Brand       *string
	Category    *string
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	ListProducts(ctx context.Context, keyword string, page int) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateSampleProduct(ctx context.Context, createdBy uuid.UUID) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AddReview(ctx context.Context, productID uuid.UUID, reviewer *domain.User, rating int, comment string) error
	TopProducts(ctx context.Context) ([]*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
	cache       *cache.Cache
	logger      *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	cache *cache.Cache,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		cache:       cache,
		logger:      logger,
	}
}

// ListProducts returns one fixed-size page of products matching the
// keyword. Pages below 1 coerce to 1; a page past the end yields an
// empty list with the finite page count.
func (s *productService) ListProducts(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}

	products, total, err := s.productRepo.List(ctx, keyword, page, domain.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	pages := int(math.Ceil(float64(total) / float64(domain.PageSize)))

	return &ProductPage{
		Products: products,
		Page:     page,
		Pages:    pages,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// CreateSampleProduct inserts a placeholder product for the admin to
// edit afterwards.
func (s *productService) CreateSampleProduct(ctx context.Context, createdBy uuid.UUID) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Sample name",
		Brand:       "Sample brand",
		Category:    "Sample category",
		Description: "Sample description",
		ImageURL:    "/images/sample.jpg",
		Price:       0,
		Stock:       0,
		Rating:      0,
		NumReviews:  0,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateTopProducts(ctx)
	return product, nil
}

// UpdateProduct overwrites a product's fields. Zero price and zero
// stock are rejected outright; this mirrors the original storefront
// and blocks legitimate free or out-of-stock updates.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Price == 0 {
		return nil, ErrPriceZero
	}
	if input.Stock == 0 {
		return nil, ErrStockZero
	}

	product.Name = input.Name
	product.Price = input.Price
	product.Stock = input.Stock
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateTopProducts(ctx)
	return product, nil
}

// DeleteProduct removes a product
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateTopProducts(ctx)
	return nil
}

// AddReview records a review for the product and recomputes the
// product's rating as the unweighted mean of all its reviews. A user
// may review a product only once.
func (s *productService) AddReview(ctx context.Context, productID uuid.UUID, reviewer *domain.User, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrRatingOutOfRange
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return err
	}

	exists, err := s.reviewRepo.ExistsForUser(ctx, productID, reviewer.ID)
	if err != nil {
		return fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return repository.ErrReviewAlreadyExists
	}

	review := &domain.Review{
		ID:           uuid.New(),
		ProductID:    productID,
		UserID:       reviewer.ID,
		ReviewerName: reviewer.Name,
		Rating:       rating,
		Comment:      comment,
		CreatedAt:    time.Now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return err
	}

	s.invalidateTopProducts(ctx)
	return nil
}

// TopProducts returns the highest-rated products, served from the
// cache when a fresh copy is available.
func (s *productService) TopProducts(ctx context.Context) ([]*domain.Product, error) {
	var cached []*domain.Product
	hit, err := s.cache.GetJSON(ctx, topProductsCacheKey, &cached)
	if err != nil {
		s.logger.Warn("Failed to read top products cache", zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	products, err := s.productRepo.Top(ctx, TopProductsLimit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, topProductsCacheKey, products, topProductsCacheTTL); err != nil {
		s.logger.Warn("Failed to write top products cache", zap.Error(err))
	}

	return products, nil
}

func (s *productService) invalidateTopProducts(ctx context.Context) {
	if err := s.cache.Delete(ctx, topProductsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate top products cache", zap.Error(err))
	}
}
