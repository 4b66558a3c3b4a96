package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"zakaz/internal/domain"
	"zakaz/internal/models"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository,
// used in unit tests and as a stand-in store during local development.
type MemoryOrderRepository struct {
	mu      sync.RWMutex
	orders  map[string]models.Order
	seq     map[string]int // insertion order, tie-breaker for equal timestamps
	nextSeq int
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
		seq:    make(map[string]int),
	}
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	r.orders[order.ID] = *order
	r.seq[order.ID] = r.nextSeq
	r.nextSeq++
	return nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

// ListByOwner returns the owner's orders, newest first.
func (r *MemoryOrderRepository) ListByOwner(ownerID string, offset, limit int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.UserID == ownerID {
			owned = append(owned, order)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return r.seq[owned[i].ID] > r.seq[owned[j].ID]
	})

	if offset >= len(owned) {
		return []models.Order{}, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

// UpdateStatus applies a status transition under the repository lock.
func (r *MemoryOrderRepository) UpdateStatus(id string, next models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !models.CanTransition(order.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
	}
	order.Status = next
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return &order, nil
}
