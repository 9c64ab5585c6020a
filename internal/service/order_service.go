package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNoOrderItems      = errors.New("order has no items")
	ErrOrderAccessDenied = errors.New("order belongs to another user")
)

// OrderItemInput is a single line item of an order request.
type OrderItemInput struct {
	ProductID uuid.UUID
	Name      string
	ImageURL  string
	Price     float64
	Qty       int
}

// CreateOrderInput carries the checkout payload. Item and total prices
// are recomputed server side; tax and shipping are taken as quoted.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	TaxPrice        float64
	ShippingPrice   float64
}

// OrderService defines the interface for order business logic
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID, caller *domain.User) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	PayOrder(ctx context.Context, id uuid.UUID, caller *domain.User, result domain.PaymentResult) (*domain.Order, error)
	DeliverOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// CreateOrder validates the items and persists the order with its
// price breakdown.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoOrderItems
	}

	now := time.Now()
	orderID := uuid.New()

	itemsPrice := 0.0
	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		itemsPrice += in.Price * float64(in.Qty)
		items = append(items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: in.ProductID,
			Name:      in.Name,
			ImageURL:  in.ImageURL,
			Price:     in.Price,
			Qty:       in.Qty,
		})
	}
	itemsPrice = roundCents(itemsPrice)

	order := &domain.Order{
		ID:              orderID,
		UserID:          userID,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		ItemsPrice:      itemsPrice,
		TaxPrice:        input.TaxPrice,
		ShippingPrice:   input.ShippingPrice,
		TotalPrice:      roundCents(itemsPrice + input.TaxPrice + input.ShippingPrice),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// GetOrder retrieves an order visible to the caller: the owner or an admin.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID, caller *domain.User) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != caller.ID && !caller.IsAdmin() {
		return nil, ErrOrderAccessDenied
	}

	return order, nil
}

// ListOrders retrieves every order
func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.List(ctx)
}

// ListMyOrders retrieves the caller's orders
func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// PayOrder records the payment confirmation on the caller's order
func (s *orderService) PayOrder(ctx context.Context, id uuid.UUID, caller *domain.User, result domain.PaymentResult) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != caller.ID && !caller.IsAdmin() {
		return nil, ErrOrderAccessDenied
	}

	paidAt := time.Now()
	if err := s.orderRepo.MarkPaid(ctx, id, result, paidAt); err != nil {
		return nil, err
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = &result
	order.UpdatedAt = paidAt

	return order, nil
}

// DeliverOrder marks an order as delivered
func (s *orderService) DeliverOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	deliveredAt := time.Now()
	if err := s.orderRepo.MarkDelivered(ctx, id, deliveredAt); err != nil {
		return nil, err
	}

	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	order.UpdatedAt = deliveredAt

	return order, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
