package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, email string) *domain.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(testDB).Create(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, createdBy uuid.UUID, name string, rating float64, createdAt time.Time) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Brand:       "Acme",
		Category:    "Electronics",
		Description: "A test product",
		ImageURL:    "/images/test.jpg",
		Price:       99.99,
		Stock:       5,
		Rating:      rating,
		NumReviews:  0,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, NewProductRepository(testDB).Create(context.Background(), product))
	return product
}

func seedOrder(t *testing.T, userID, productID uuid.UUID) *domain.Order {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	orderID := uuid.New()
	order := &domain.Order{
		ID:     orderID,
		UserID: userID,
		Items: []domain.OrderItem{
			{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: productID,
				Name:      "Test product",
				ImageURL:  "/images/test.jpg",
				Price:     99.99,
				Qty:       2,
			},
		},
		ShippingAddress: domain.ShippingAddress{
			Address:    "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		PaymentMethod: "PayPal",
		ItemsPrice:    199.98,
		TaxPrice:      20,
		ShippingPrice: 10,
		TotalPrice:    229.98,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, NewOrderRepository(testDB).Create(context.Background(), order))
	return order
}
