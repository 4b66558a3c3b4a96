package repositories

import "zakaz/internal/models"

// UserRepository defines the interface for user data access. Lookups return
// domain.ErrNotFound (possibly wrapped) when no record exists.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
}
