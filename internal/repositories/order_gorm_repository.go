package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"zakaz/internal/domain"
	"zakaz/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create persists an order together with its items in one transaction.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("%w: create order: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// GetByID retrieves an order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get order: %v", domain.ErrStoreUnavailable, err)
	}
	return &order, nil
}

// ListByOwner returns the owner's orders, newest first, with offset pagination.
func (r *GORMOrderRepository) ListByOwner(ownerID string, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", domain.ErrStoreUnavailable, err)
	}
	return orders, nil
}

// UpdateStatus moves an order to the next status. The state-machine check and
// the write happen in one transaction, and the UPDATE is guarded by the
// current status so a concurrent transition cannot be overwritten: losing the
// race surfaces as a retryable store error, never as a partial write.
func (r *GORMOrderRepository) UpdateStatus(id string, next models.OrderStatus) (*models.Order, error) {
	var updated models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("%w: get order for update: %v", domain.ErrStoreUnavailable, err)
		}

		if !models.CanTransition(order.Status, next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, order.Status).
			Updates(map[string]interface{}{
				"status":     next,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("%w: update order status: %v", domain.ErrStoreUnavailable, res.Error)
		}
		if res.RowsAffected == 0 {
			// Another writer changed the status between the read and the
			// guarded update. The caller may retry.
			return fmt.Errorf("%w: concurrent status change on order %s", domain.ErrStoreUnavailable, id)
		}

		return tx.Preload("Items").First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
