// Package messaging publica en RabbitMQ los movimientos ya confirmados.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.MovementPublisher = (*Publisher)(nil)

// RoutingKeyPrefix las claves quedan como stock.movement.<kind>.
const RoutingKeyPrefix = "stock.movement"

// Channel parte de *amqp.Channel que usa el publicador.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// MovementEvent cuerpo JSON del mensaje.
type MovementEvent struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	Kind              string           `json:"kind"`
	Quantity          int64            `json:"quantity"`
	Origin            string           `json:"origin,omitempty"`
	Destination       string           `json:"destination,omitempty"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost         *decimal.Decimal `json:"total_cost,omitempty"`
	BatchIdentifier   string           `json:"batch_identifier,omitempty"`
	UserID            string           `json:"user_id"`
	MovementTimestamp time.Time        `json:"movement_timestamp"`
}

// Publisher publica en un exchange topic.
type Publisher struct {
	ch       Channel
	exchange string
}

// NewPublisher construye el publicador sobre un canal ya abierto.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// RoutingKey clave de enrutamiento para un tipo de movimiento.
func RoutingKey(kind entity.MovementKind) string {
	return RoutingKeyPrefix + "." + string(kind)
}

func (p *Publisher) PublishMovement(ctx context.Context, m *entity.StockMovement) error {
	body, err := json.Marshal(MovementEvent{
		ID:                m.ID,
		ProductID:         m.ProductID,
		Kind:              string(m.Kind),
		Quantity:          m.Quantity,
		Origin:            m.OriginKey(),
		Destination:       m.DestinationKey(),
		UnitCost:          m.UnitCost,
		TotalCost:         m.TotalCost,
		BatchIdentifier:   m.BatchIdentifier,
		UserID:            m.UserID,
		MovementTimestamp: m.MovementTimestamp,
	})
	if err != nil {
		return fmt.Errorf("could not marshal movement: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		p.exchange,
		RoutingKey(m.Kind),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    m.ID,
			Timestamp:    m.CreatedAt,
			Type:         RoutingKey(m.Kind),
			Body:         body,
		},
	)
}
