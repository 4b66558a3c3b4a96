package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"zakaz/internal/middleware"
	"zakaz/internal/models"
	"zakaz/internal/services"
)

// AccountHandler handles HTTP requests for registration, login, profile
// updates and the admin user listing.
type AccountHandler struct {
	users    *services.UserService
	tokens   *services.TokenService
	validate *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(users *services.UserService, tokens *services.TokenService) *AccountHandler {
	return &AccountHandler{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the account routes. authRequired protects the
// profile and listing endpoints; register/login stay public.
func (h *AccountHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	account := router.Group("/account")
	account.Post("/register", h.HandleRegister)
	account.Post("/login", h.HandleLogin)
	account.Put("/profile", authRequired, h.HandleUpdateProfile)

	router.Get("/users", authRequired, h.HandleListUsers)
}

// RegistrationRequest is the request body for registration.
type RegistrationRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

// HandleRegister handles new account registration.
func (h *AccountHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, err.Error())
	}

	user, err := h.users.Register(req.Email, req.Password, req.Name)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user_id": user.ID,
		"email":   user.Email,
	})
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin verifies credentials and issues a bearer token. Failure codes
// (USER_NOT_FOUND, INVALID_PASSWORD, INVALID_INPUT) are part of the client
// contract and must stay stable.
func (h *AccountHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, "Invalid login payload")
	}

	user, err := h.users.Verify(req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	token, err := h.tokens.Issue(user.ID, user.Roles, time.Now())
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.Name,
				"roles": user.Roles,
			},
		},
	})
}

// UpdateProfileRequest carries optional profile fields; absent fields stay
// unchanged.
type UpdateProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// HandleUpdateProfile updates the caller's own profile.
func (h *AccountHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, err.Error())
	}

	user, err := h.users.UpdateProfile(claims.Identity, services.ProfileUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
	})
}

// userSummary is the admin-listing view of a user: never the password hash.
type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleListUsers returns a paginated user listing for admins.
func (h *AccountHandler) HandleListUsers(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)

	users, err := h.users.List(claims, page, pageSize)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": toSummaries(users)})
}

func toSummaries(users []models.User) []userSummary {
	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, userSummary{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	return out
}
