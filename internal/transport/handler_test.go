package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "handler-test-secret"

// In-memory repositories backing the real services, so handler tests
// exercise the full request path from router to business logic.

type memUserRepo struct {
	users map[string]*domain.User
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	for email, existing := range m.users {
		if existing.ID == user.ID {
			delete(m.users, email)
			m.users[user.Email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for email, user := range m.users {
		if user.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

type memRefreshTokenRepo struct {
	tokens map[string]*domain.RefreshToken
}

func (m *memRefreshTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *memRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *memRefreshTokenRepo) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type memProductRepo struct {
	products map[uuid.UUID]*domain.Product
	order    []uuid.UUID
}

func (m *memProductRepo) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	m.order = append(m.order, product.ID)
	return nil
}

func (m *memProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *memProductRepo) List(ctx context.Context, keyword string, page, pageSize int) ([]*domain.Product, int, error) {
	matched := []*domain.Product{}
	for _, id := range m.order {
		product, exists := m.products[id]
		if !exists {
			continue
		}
		if keyword == "" || strings.Contains(strings.ToLower(product.Name), strings.ToLower(keyword)) {
			matched = append(matched, product)
		}
	}

	start := (page - 1) * pageSize
	if start > len(matched) {
		return []*domain.Product{}, len(matched), nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *memProductRepo) Top(ctx context.Context, limit int) ([]*domain.Product, error) {
	all := []*domain.Product{}
	for _, id := range m.order {
		if product, exists := m.products[id]; exists {
			all = append(all, product)
		}
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].Rating > all[i].Rating {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type memReviewRepo struct {
	reviews  map[uuid.UUID][]*domain.Review
	products *memProductRepo
}

func (m *memReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	for _, existing := range m.reviews[review.ProductID] {
		if existing.UserID == review.UserID {
			return repository.ErrReviewAlreadyExists
		}
	}
	m.reviews[review.ProductID] = append(m.reviews[review.ProductID], review)

	// Mirror the transactional aggregate recompute
	product, exists := m.products.products[review.ProductID]
	if !exists {
		return repository.ErrProductNotFound
	}
	sum := 0
	for _, r := range m.reviews[review.ProductID] {
		sum += r.Rating
	}
	product.NumReviews = len(m.reviews[review.ProductID])
	product.Rating = float64(sum) / float64(product.NumReviews)
	return nil
}

func (m *memReviewRepo) ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	for _, review := range m.reviews[productID] {
		if review.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReviewRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error) {
	return m.reviews[productID], nil
}

type memOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func (m *memOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *memOrderRepo) List(ctx context.Context) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, order := range m.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (m *memOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, order := range m.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *memOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, result domain.PaymentResult, paidAt time.Time) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = &result
	return nil
}

func (m *memOrderRepo) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	return nil
}

// testEnv wires the real services and handlers over in-memory storage.
type testEnv struct {
	router      chi.Router
	userService service.UserService
	productRepo *memProductRepo
	orderRepo   *memOrderRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()

	userRepo := &memUserRepo{users: make(map[string]*domain.User)}
	refreshTokenRepo := &memRefreshTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
	productRepo := &memProductRepo{products: make(map[uuid.UUID]*domain.Product)}
	reviewRepo := &memReviewRepo{reviews: make(map[uuid.UUID][]*domain.Review), products: productRepo}
	orderRepo := &memOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}

	userService := service.NewUserService(userRepo, refreshTokenRepo, testJWTSecret)
	productService := service.NewProductService(productRepo, reviewRepo, nil, logger)
	orderService := service.NewOrderService(orderRepo)

	router := chi.NewRouter()
	authMiddleware := custommiddleware.AuthMiddleware(testJWTSecret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	NewProductHandler(productService, userService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	NewOrderHandler(orderService, userService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)

	return &testEnv{
		router:      router,
		userService: userService,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// registerUser creates an account, optionally promotes it to admin, and
// returns the user with a valid access token.
func (e *testEnv) registerUser(t *testing.T, email string, admin bool) (*domain.User, string) {
	t.Helper()
	ctx := context.Background()

	user, err := e.userService.Register(ctx, "Test User", email, "password123")
	require.NoError(t, err)

	if admin {
		adminRole := domain.RoleAdmin
		user, err = e.userService.UpdateUser(ctx, user.ID, service.UpdateUserInput{Role: &adminRole})
		require.NoError(t, err)
	}

	accessToken, _, _, err := e.userService.Login(ctx, email, "password123")
	require.NoError(t, err)

	return user, accessToken
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64, rating float64) *domain.Product {
	t.Helper()

	now := time.Now()
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       name,
		Brand:      "Acme",
		Category:   "Electronics",
		Price:      price,
		Stock:      10,
		Rating:     rating,
		CreatedBy:  uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, e.productRepo.Create(context.Background(), product))
	return product
}

// doRequest performs a request against the test router. A non-empty
// token is sent as a bearer credential.
func (e *testEnv) doRequest(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
