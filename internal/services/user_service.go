package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"zakaz/internal/authz"
	"zakaz/internal/domain"
	"zakaz/internal/models"
	"zakaz/internal/repositories"
)

// UserService is the credential store: it registers accounts, verifies
// credentials and maintains profiles. Plaintext passwords only ever live on
// the stack here; they are hashed before persisting and never logged.
type UserService struct {
	users repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// ProfileUpdate carries the optional fields of a profile change. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// Register creates a new account with a bcrypt-hashed password and the
// default user role. Emails are unique case-insensitively.
func (s *UserService) Register(email, password, name string) (*models.User, error) {
	email = normalizeEmail(email)

	if existing, err := s.users.GetByEmail(email); err == nil && existing != nil {
		return nil, domain.ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Password:  string(hash),
		Roles:     []string{authz.RoleUser},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Verify checks credentials against the stored hash. Distinct failures let
// the login endpoint report its stable error codes; the hash comparison is
// bcrypt's constant-time one.
func (s *UserService) Verify(email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidPassword
	}
	return user, nil
}

// UpdateProfile changes only the provided fields. An email change re-checks
// uniqueness excluding the caller's own record; a password change re-hashes.
func (s *UserService) UpdateProfile(identity string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.users.GetByID(identity)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if email != user.Email {
			if other, err := s.users.GetByEmail(email); err == nil && other != nil && other.ID != user.ID {
				return nil, domain.ErrDuplicateEmail
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hash)
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns a page of users for the admin listing. The caller must hold
// the admin role; the gate runs here so the decision stays with the service.
func (s *UserService) List(claims *authz.Claims, page, pageSize int) ([]models.User, error) {
	if d := authz.Authorize(claims, authz.ActionListUsers, nil); !d.Allowed {
		return nil, d.Reason
	}
	offset, limit, err := pageBounds(page, pageSize)
	if err != nil {
		return nil, err
	}
	return s.users.List(offset, limit)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// pageBounds converts 1-based page/pageSize into offset/limit.
func pageBounds(page, pageSize int) (offset, limit int, err error) {
	if page < 1 || pageSize < 1 {
		return 0, 0, fmt.Errorf("%w: page and pageSize must be positive", domain.ErrInvalidInput)
	}
	return (page - 1) * pageSize, pageSize, nil
}
