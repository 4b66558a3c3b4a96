package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zakaz/internal/authz"
	"zakaz/internal/domain"
	"zakaz/internal/models"
	"zakaz/internal/repositories"
)

// OrderEvents receives lifecycle notifications. Publishing is best-effort:
// implementations log failures instead of surfacing them to the caller.
type OrderEvents interface {
	OrderCreated(order *models.Order)
	OrderStatusUpdated(order *models.Order)
}

// NewOrderItem is one requested line item of a new order.
type NewOrderItem struct {
	Product  string
	Quantity int
	Price    decimal.Decimal
}

// OrderService owns the order lifecycle. Every operation passes through the
// authorization gate before touching the store.
type OrderService struct {
	orders repositories.OrderRepository
	events OrderEvents // may be nil
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository, events OrderEvents) *OrderService {
	return &OrderService{orders: orders, events: events}
}

// Create validates the item set, computes the exact total and persists the
// order with the caller as its immutable owner.
func (s *OrderService) Create(claims *authz.Claims, items []NewOrderItem) (*models.Order, error) {
	if d := authz.Authorize(claims, authz.ActionCreateOrder, nil); !d.Allowed {
		return nil, d.Reason
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", domain.ErrInvalidInput)
	}

	orderID := uuid.New().String()
	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for i, item := range items {
		if item.Product == "" {
			return nil, fmt.Errorf("%w: item %d has no product", domain.ErrInvalidInput, i)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d quantity must be at least 1", domain.ErrInvalidInput, i)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: item %d price must not be negative", domain.ErrInvalidInput, i)
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		orderItems = append(orderItems, models.OrderItem{
			ID:       uuid.New().String(),
			OrderID:  orderID,
			Product:  item.Product,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:          orderID,
		UserID:      claims.Identity,
		Items:       orderItems,
		Status:      models.StatusCreated,
		TotalAmount: total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.OrderCreated(order)
	}
	return order, nil
}

// Get returns a single order. Absent orders surface as NotFound before the
// ownership check runs, so a foreign existing order yields NotOwner.
func (s *OrderService) Get(claims *authz.Claims, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if d := authz.Authorize(claims, authz.ActionReadOrder, &authz.Resource{Owner: order.UserID}); !d.Allowed {
		return nil, d.Reason
	}
	return order, nil
}

// List returns a page of the caller's own orders, newest first. Pages past
// the end come back empty, not as an error.
func (s *OrderService) List(claims *authz.Claims, page, pageSize int) ([]models.Order, error) {
	if d := authz.Authorize(claims, authz.ActionListOwnOrders, nil); !d.Allowed {
		return nil, d.Reason
	}
	offset, limit, err := pageBounds(page, pageSize)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByOwner(claims.Identity, offset, limit)
}

// UpdateStatus drives the state machine. The transition itself is applied
// atomically by the repository; nothing is written when it is illegal.
func (s *OrderService) UpdateStatus(claims *authz.Claims, orderID string, status string) (*models.Order, error) {
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, status)
	}
	return s.transition(claims, authz.ActionUpdateOrder, orderID, next)
}

// Cancel moves an order to cancelled through the same state machine, so
// orders already done (or cancelled) cannot be cancelled again.
func (s *OrderService) Cancel(claims *authz.Claims, orderID string) (*models.Order, error) {
	return s.transition(claims, authz.ActionCancelOrder, orderID, models.StatusCancelled)
}

func (s *OrderService) transition(claims *authz.Claims, action authz.Action, orderID string, next models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if d := authz.Authorize(claims, action, &authz.Resource{Owner: order.UserID}); !d.Allowed {
		return nil, d.Reason
	}

	updated, err := s.orders.UpdateStatus(orderID, next)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.OrderStatusUpdated(updated)
	}
	return updated, nil
}
