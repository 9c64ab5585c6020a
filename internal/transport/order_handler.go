package transport

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one line item of a checkout payload
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	ImageURL  string    `json:"image_url"`
	Price     float64   `json:"price" validate:"gte=0"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

// ShippingAddressRequest is the delivery destination of a checkout payload
type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CreateOrderRequest represents the checkout payload
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"required,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
	TaxPrice        float64                `json:"tax_price" validate:"gte=0"`
	ShippingPrice   float64                `json:"shipping_price" validate:"gte=0"`
}

// PayOrderRequest carries the payment provider's confirmation
type PayOrderRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	Status        string `json:"status" validate:"required"`
	Email         string `json:"email"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	userService  service.UserService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, userService service.UserService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		userService:  userService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.CreateOrder)
			r.Get("/myorders", h.ListMyOrders)
			r.Get("/{id}", h.GetOrder)
			r.Put("/{id}/pay", h.PayOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Get("/", h.ListOrders)
			r.Put("/{id}/deliver", h.DeliverOrder)
		})
	})
}

// CreateOrder handles checkout
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, ok := currentUser(r, h.userService, h.logger, w)
	if !ok {
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Price:     item.Price,
			Qty:       item.Qty,
		})
	}

	order, err := h.orderService.CreateOrder(r.Context(), caller.ID, service.CreateOrderInput{
		Items: items,
		ShippingAddress: domain.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
		TaxPrice:      req.TaxPrice,
		ShippingPrice: req.ShippingPrice,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoOrderItems) {
			middleware.RespondWithError(w, http.StatusBadRequest, "no order items")
			return
		}
		h.logger.Error("Failed to create order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", caller.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders handles the admin order listing
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// ListMyOrders handles the caller's order listing
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(r, h.userService, h.logger, w)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMyOrders(r.Context(), caller.ID)
	if err != nil {
		h.logger.Error("Failed to list user orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder handles a single order fetch
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	caller, ok := currentUser(r, h.userService, h.logger, w)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id, caller)
	if err != nil {
		h.respondOrderError(w, err, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// PayOrder handles recording a payment confirmation
func (h *OrderHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	var req PayOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Payment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, ok := currentUser(r, h.userService, h.logger, w)
	if !ok {
		return
	}

	order, err := h.orderService.PayOrder(r.Context(), id, caller, domain.PaymentResult{
		TransactionID: req.TransactionID,
		Status:        req.Status,
		Email:         req.Email,
	})
	if err != nil {
		h.respondOrderError(w, err, "failed to pay order")
		return
	}

	h.logger.Info("Order paid", zap.String("order_id", order.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// DeliverOrder handles marking an order delivered
func (h *OrderHandler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	order, err := h.orderService.DeliverOrder(r.Context(), id)
	if err != nil {
		h.respondOrderError(w, err, "failed to deliver order")
		return
	}

	h.logger.Info("Order delivered", zap.String("order_id", order.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrOrderAccessDenied):
		middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
