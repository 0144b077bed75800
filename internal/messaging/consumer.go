package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tickets/internal/config"
	"github.com/spec-kit/support-tickets/internal/observability"
)

// Consumer owns the broker connection lifecycle for the ticket queue. One
// Consumer is constructed per run; there is no package-level connection
// state. Message callbacks run sequentially on the loop's goroutine, so
// processing order equals delivery order.
type Consumer struct {
	rabbit  config.RabbitConfig
	backoff config.ConsumerConfig
	adapter *EventAdapter
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewConsumer constructs a consumer loop.
func NewConsumer(rabbit config.RabbitConfig, backoff config.ConsumerConfig, adapter *EventAdapter, logger *zap.Logger, metrics *observability.Metrics) *Consumer {
	return &Consumer{
		rabbit:  rabbit,
		backoff: backoff,
		adapter: adapter,
		logger:  logger,
		metrics: metrics,
	}
}

// Run consumes until ctx is cancelled, which is the only clean exit.
// Connection failures and unexpected errors alike are retried forever with
// bounded exponential backoff; the loop never crashes the process.
func (c *Consumer) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			c.logger.Info("consumer stopped")
			return nil
		}

		err := c.consumeOnce(ctx, &attempt)
		if ctx.Err() != nil {
			c.logger.Info("consumer stopped")
			return nil
		}

		attempt++
		c.metrics.RecordReconnect()
		delay := c.retryDelay(attempt)
		c.logger.Warn("connection lost; reconnecting",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			c.logger.Info("consumer stopped")
			return nil
		}
	}
}

// consumeOnce runs one connect/declare/consume cycle and returns the error
// that broke it. ctx cancellation closes the connection, which unblocks the
// delivery channel.
func (c *Consumer) consumeOnce(ctx context.Context, attempt *int) error {
	c.logger.Info("connecting to rabbitmq", zap.String("host", c.rabbit.Host))
	conn, err := amqp.Dial(c.rabbit.URL())
	if err != nil {
		return err
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return err
	}

	if err := channel.ExchangeDeclare(c.rabbit.Exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := channel.QueueDeclare(c.rabbit.Queue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := channel.QueueBind(c.rabbit.Queue, "", c.rabbit.Exchange, false, nil); err != nil {
		return err
	}

	deliveries, err := channel.Consume(c.rabbit.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	if *attempt > 0 {
		c.logger.Info("reconnected to rabbitmq", zap.Int("attempts", *attempt))
	}
	c.logger.Info("consumer started, waiting for messages", zap.String("queue", c.rabbit.Queue))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		delivery, ok := <-deliveries
		if !ok {
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("delivery channel closed by broker")
		}
		*attempt = 0

		c.metrics.RecordConsumed()
		if c.handleDelivery(ctx, delivery.Body) {
			if err := delivery.Ack(false); err != nil {
				return err
			}
			c.metrics.RecordAck()
		} else {
			// Never requeue: a message that failed once fails the same
			// way again, and a poison message must not storm the queue.
			if err := delivery.Nack(false, false); err != nil {
				return err
			}
			c.metrics.RecordNack()
		}
	}
}

// handleDelivery decodes the payload and dispatches it, reporting whether
// the message should be acknowledged.
func (c *Consumer) handleDelivery(ctx context.Context, body []byte) bool {
	var event InboundEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.logger.Error("invalid JSON in message body", zap.Error(err))
		return false
	}
	return shouldAck(c.adapter.Handle(ctx, event))
}

// shouldAck is the ack decision as a pure function of the adapter outcome.
func shouldAck(outcome Outcome) bool {
	switch outcome.Kind {
	case OutcomeProcessed, OutcomeIgnored:
		return true
	default:
		return false
	}
}

// retryDelay computes min(initial × factor^attempt, max).
func (c *Consumer) retryDelay(attempt int) time.Duration {
	initial := c.backoff.InitialRetryDelay()
	max := c.backoff.MaxRetryDelay()
	factor := c.backoff.BackoffFactor
	if factor <= 1 {
		factor = 2
	}

	delay := time.Duration(float64(initial) * math.Pow(factor, float64(attempt)))
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}
