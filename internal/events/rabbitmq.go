package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgallion1/cvparse/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ publishes events to a durable topic exchange.
type RabbitMQ struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	source   string
	log      *logger.Logger
}

var _ Publisher = (*RabbitMQ)(nil)

// NewRabbitMQ dials url and declares exchange.
func NewRabbitMQ(url, exchange, source string, log *logger.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	r := &RabbitMQ{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		source:   source,
		log:      log.WithComponent("events"),
	}
	r.log.Info().Str("exchange", exchange).Msg("connected to rabbitmq")
	return r, nil
}

func (r *RabbitMQ) PublishParsed(ctx context.Context, ev ParsedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// Held so Close cannot race an in-flight publish.
	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(ctx,
		r.exchange,       // exchange
		RoutingKeyParsed, // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			AppId:        r.source,
			MessageId:    ev.ResumeID,
			Timestamp:    ev.ParsedAt,
			Type:         RoutingKeyParsed,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyParsed, err)
	}

	r.log.Debug().Str("resume_id", ev.ResumeID).Msg("event published")
	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.channel.Close(); err != nil {
		r.log.Warn().Err(err).Msg("close channel")
	}
	if err := r.conn.Close(); err != nil {
		return fmt.Errorf("close connection: %w", err)
	}
	return nil
}
