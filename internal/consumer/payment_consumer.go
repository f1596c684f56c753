package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wanderstay/service-booking/internal/application"
	"github.com/wanderstay/service-booking/internal/events"
	"github.com/wanderstay/service-booking/internal/kafka"
)

// PaymentEventConsumer listens to payment events and feeds them into the
// reconciliation handler. The stream is at-least-once: returning an error
// leaves the offset uncommitted so the broker redelivers, and the handler's
// idempotency absorbs the duplicates.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.PaymentService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.PaymentService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentSucceeded:
		return c.handlePaymentSucceeded(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentSucceeded(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentSucceededEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentSucceededEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	err := c.service.Reconcile(ctx, application.ReconcileRequest{
		EventType:     events.PaymentSucceeded,
		ProviderTxnID: evt.ProviderTxnID,
		BookingID:     evt.BookingID,
		UserID:        evt.UserID,
		AmountCents:   evt.AmountCents,
		Currency:      evt.Currency,
		ReceiptURL:    evt.ReceiptURL,
	})
	if err != nil {
		c.logger.Error("failed to reconcile payment from event stream",
			zap.String("booking_id", evt.BookingID.String()),
			zap.String("provider_txn_id", evt.ProviderTxnID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
