package consumers

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/publishers"
)

// PropertyInvalidator drops every cached copy of a property.
type PropertyInvalidator interface {
	InvalidateProperty(id string)
}

// RabbitMQConsumer listens to property events from every instance and keeps
// this instance's cache coherent with writes made elsewhere.
type RabbitMQConsumer struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	properties PropertyInvalidator
	logger     *zap.Logger
}

// NewRabbitMQConsumer connects, declares the exchange and binds a private queue to it.
func NewRabbitMQConsumer(rabbitURL, exchange string, properties PropertyInvalidator, logger *zap.Logger) (*RabbitMQConsumer, error) {
	logger.Info("Connecting to RabbitMQ")

	conn, err := amqp.Dial(rabbitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := publishers.DeclareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	// each instance needs its own copy of every event
	q, err := ch.QueueDeclare(
		"",    // name, server generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	logger.Info("Queue bound", zap.String("queue", q.Name), zap.String("exchange", exchange))

	return &RabbitMQConsumer{
		connection: conn,
		channel:    ch,
		queueName:  q.Name,
		properties: properties,
		logger:     logger,
	}, nil
}

// Start registers the consumer and processes deliveries in a goroutine.
func (c *RabbitMQConsumer) Start() error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		true,        // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer registered, waiting for messages", zap.String("queue", c.queueName))

	go func() {
		for msg := range msgs {
			c.processMessage(msg)
		}
	}()
	return nil
}

// processMessage handles one delivery and acks or nacks it.
func (c *RabbitMQConsumer) processMessage(msg amqp.Delivery) {
	var event publishers.PropertyMessage
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Warn("Error unmarshaling message", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	if event.PropertyID == "" {
		c.logger.Warn("PropertyID is empty in message")
		msg.Nack(false, false)
		return
	}

	switch event.Action {
	case publishers.ActionCreate:
		// nothing cached yet for a new property
	case publishers.ActionUpdate, publishers.ActionDelete:
		// a fill that read the old record before this event is discarded too
		c.properties.InvalidateProperty(event.PropertyID)
	default:
		c.logger.Warn("Unknown action", zap.String("action", event.Action))
		msg.Nack(false, false)
		return
	}

	c.logger.Debug("Processed property event",
		zap.String("action", event.Action),
		zap.String("property_id", event.PropertyID))

	if err := msg.Ack(false); err != nil {
		c.logger.Warn("Error acknowledging message", zap.Error(err))
	}
}

// Close closes the RabbitMQ channel and connection.
func (c *RabbitMQConsumer) Close() error {
	var errs []error

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing channel: %w", err))
		}
	}
	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing connection: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ consumer: %v", errs)
	}
	return nil
}
