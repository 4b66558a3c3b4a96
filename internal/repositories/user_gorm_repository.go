package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"zakaz/internal/domain"
	"zakaz/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create persists a new user, assigning an ID when absent.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("%w: create user: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// GetByEmail retrieves a user by email. The caller is expected to pass an
// already-lowercased address.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get user by email: %v", domain.ErrStoreUnavailable, err)
	}
	return &user, nil
}

// GetByID retrieves a user by its identity.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get user by id: %v", domain.ErrStoreUnavailable, err)
	}
	return &user, nil
}

// Update saves all fields of an existing user record.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(&models.User{ID: user.ID}).
		Select("Email", "Name", "Password", "Roles", "UpdatedAt").
		Updates(user)
	if res.Error != nil {
		return fmt.Errorf("%w: update user: %v", domain.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns users ordered by creation time, newest first.
func (r *GORMUserRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", domain.ErrStoreUnavailable, err)
	}
	return users, nil
}
