package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Property event actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// PropertyMessage is the body of every property change event.
type PropertyMessage struct {
	Action     string `json:"action"`
	PropertyID string `json:"property_id"`
}

// EventPublisher announces property changes.
type EventPublisher interface {
	Publish(ctx context.Context, action, propertyID string) error
	Close() error
}

// RabbitMQPublisher publishes PropertyMessage events to a fanout exchange.
type RabbitMQPublisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	logger     *zap.Logger

	mu sync.Mutex
}

// NewRabbitMQPublisher dials RabbitMQ and declares the fanout exchange.
func NewRabbitMQPublisher(rabbitURL, exchange string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(rabbitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := DeclareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ publisher ready", zap.String("exchange", exchange))
	return &RabbitMQPublisher{
		connection: conn,
		channel:    ch,
		exchange:   exchange,
		logger:     logger,
	}, nil
}

// DeclareExchange declares the durable fanout exchange shared by publishers
// and consumers.
func DeclareExchange(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"fanout", // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Publish sends one event. amqp channels are not safe for concurrent publishes.
func (p *RabbitMQPublisher) Publish(ctx context.Context, action, propertyID string) error {
	body, err := json.Marshal(PropertyMessage{Action: action, PropertyID: propertyID})
	if err != nil {
		return fmt.Errorf("error marshaling message: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("error publishing %s event for %s: %w", action, propertyID, err)
	}

	p.logger.Debug("Published property event", zap.String("action", action), zap.String("property_id", propertyID))
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing channel: %w", err))
		}
	}
	if p.connection != nil {
		if err := p.connection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ publisher: %v", errs)
	}
	return nil
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(context.Context, string, string) error { return nil }

// Close does nothing.
func (NoopPublisher) Close() error { return nil }
