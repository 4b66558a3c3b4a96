package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"zakaz/internal/middleware"
	"zakaz/internal/services"
)

// OrderHandler handles HTTP requests for orders. Every route requires a
// valid bearer token.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes behind the auth middleware.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orders := router.Group("/orders", authRequired)
	orders.Post("/", h.HandleCreateOrder)
	orders.Get("/", h.HandleListOrders)
	orders.Get("/:id", h.HandleGetOrder)
	orders.Put("/:id", h.HandleUpdateOrderStatus)
	orders.Delete("/:id", h.HandleCancelOrder)
}

// CreateOrderItem is one line item in a create request. Price arrives as a
// decimal string so the amount is never rounded through a float.
type CreateOrderItem struct {
	Product  string          `json:"product" validate:"required"`
	Quantity int             `json:"quantity" validate:"required,min=1"`
	Price    decimal.Decimal `json:"price"`
}

// CreateOrderRequest is the request body for creating an order.
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

// HandleCreateOrder creates a new order owned by the caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, err.Error())
	}

	items := make([]services.NewOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.NewOrderItem{
			Product:  item.Product,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	order, err := h.service.Create(claims, items)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrder returns a single order for its owner (or an admin).
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	order, err := h.service.Get(claims, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// HandleListOrders returns a page of the caller's own orders.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)

	orders, err := h.service.List(claims, page, pageSize)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// UpdateOrderRequest is the request body for a status update.
type UpdateOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus applies a state-machine transition.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	var req UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, "Status is required")
	}

	order, err := h.service.UpdateStatus(claims, c.Params("id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels an order. Cancellation is a status value, not a
// removal, so terminal orders are rejected like any other illegal transition.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	order, err := h.service.Cancel(claims, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}
