package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusCreated    OrderStatus = "created"
	StatusInProgress OrderStatus = "in_progress"
	StatusDone       OrderStatus = "done"
	StatusCancelled  OrderStatus = "cancelled"
)

// transitions holds every legal state change. done and cancelled are
// terminal: they have no outgoing edges.
var transitions = map[OrderStatus][]OrderStatus{
	StatusCreated:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusDone, StatusCancelled},
}

// Valid reports whether s is a recognized order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the state machine permits moving an order
// from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is a single line item. It belongs to exactly one order and is
// only created or removed together with its parent's item set.
type OrderItem struct {
	ID       string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID  string          `json:"-" gorm:"index;type:varchar(36)"`
	Product  string          `json:"product" gorm:"type:varchar(255)"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(20,2)"` // unit price at order time
}

// Order is a customer order. UserID is the owner and never changes after
// creation; TotalAmount always equals the sum of quantity*price over Items.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Items       []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20)"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(20,2)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
