package events

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"zakaz/internal/models"
	"zakaz/pkg/rabbitmq"
)

// Event routing keys.
const (
	OrderCreated       = "order.created"
	OrderStatusUpdated = "order.status_updated"
)

// Publisher pushes order lifecycle events onto the broker. Publishing is
// best-effort: a failed publish is logged and the request proceeds.
type Publisher struct {
	mq *rabbitmq.Client
}

// NewPublisher wraps a connected RabbitMQ client.
func NewPublisher(mq *rabbitmq.Client) *Publisher {
	return &Publisher{mq: mq}
}

type orderEvent struct {
	Event   string `json:"event"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
	Total   string `json:"total"`
}

// OrderCreated publishes an order.created event.
func (p *Publisher) OrderCreated(order *models.Order) {
	p.publish(OrderCreated, order)
}

// OrderStatusUpdated publishes an order.status_updated event.
func (p *Publisher) OrderStatusUpdated(order *models.Order) {
	p.publish(OrderStatusUpdated, order)
}

func (p *Publisher) publish(event string, order *models.Order) {
	body, err := json.Marshal(orderEvent{
		Event:   event,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		Total:   order.TotalAmount.String(),
	})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal order event")
		return
	}
	if err := p.mq.Publish(event, body); err != nil {
		log.Warn().Err(err).Str("event", event).Str("order_id", order.ID).Msg("failed to publish order event")
		return
	}
	log.Debug().Str("event", event).Str("order_id", order.ID).Msg("order event published")
}
