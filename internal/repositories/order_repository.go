package repositories

import "zakaz/internal/models"

// OrderRepository defines the interface for order data access.
//
// UpdateStatus is the only mutating call after creation. Implementations must
// apply the state-machine check and the write as one atomic unit so that
// concurrent updates to the same order cannot interleave partially.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	ListByOwner(ownerID string, offset, limit int) ([]models.Order, error)
	UpdateStatus(id string, next models.OrderStatus) (*models.Order, error)
}
