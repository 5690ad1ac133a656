package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lshigami/eps-topik/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

const (
	AttemptStarted   = "attempt.started"
	AttemptSubmitted = "attempt.submitted"
	AttemptAbandoned = "attempt.abandoned"
)

// AttemptEvent is the body of every attempt.* message. Score fields are
// only set on attempt.submitted.
type AttemptEvent struct {
	EventType       string    `json:"event_type"`
	AttemptID       uint      `json:"attempt_id"`
	UserID          uint      `json:"user_id"`
	ExamID          uint      `json:"exam_id"`
	Status          string    `json:"status"`
	TotalPercentage *int      `json:"total_percentage,omitempty"`
	Passed          *bool     `json:"passed,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishAttemptEvent(ctx context.Context, event *AttemptEvent) error
}

type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher connects to RabbitMQ and declares the topic exchange. With no
// URL configured it returns a publisher that drops every event.
func NewPublisher(lc fx.Lifecycle, cfg *config.Config) (Publisher, error) {
	if cfg.RabbitMQ.URL == "" {
		log.Warn().Msg("RABBITMQ_URL is not set. Attempt events will not be published.")
		return NopPublisher{}, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		cfg.RabbitMQ.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.RabbitMQ.Exchange, err)
	}

	p := &RabbitPublisher{conn: conn, channel: channel, exchange: cfg.RabbitMQ.Exchange}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return p.Close()
		},
	})
	log.Info().Str("exchange", p.exchange).Msg("RabbitMQ publisher ready")
	return p, nil
}

func (p *RabbitPublisher) PublishAttemptEvent(ctx context.Context, event *AttemptEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(pubCtx, p.exchange, event.EventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType, err)
	}
	log.Debug().Str("routingKey", event.EventType).Uint("attemptID", event.AttemptID).Msg("Published event")
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type NopPublisher struct{}

func (NopPublisher) PublishAttemptEvent(context.Context, *AttemptEvent) error { return nil }
