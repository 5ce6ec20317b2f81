package worker

import (
	"context"
	"fmt"
	"time"

	"wealth/internal/amqp"
	"wealth/internal/cache"
	"wealth/internal/log"
	"wealth/internal/notify"
)

const (
	defaultSendTimeout = 30 * time.Second
	sentCacheSize      = 10_000
	sentCacheTTL       = 24 * time.Hour
)

// MailWorker delivers alert emails taken off the queue.
type MailWorker struct {
	mailer      notify.Notifier
	sendTimeout time.Duration
	sent        *cache.LRU[time.Time] // message ID -> delivery time
}

func NewMailWorker(mailer notify.Notifier, sendTimeout time.Duration) *MailWorker {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &MailWorker{
		mailer:      mailer,
		sendTimeout: sendTimeout,
		sent:        cache.NewLRU[time.Time](sentCacheSize, sentCacheTTL),
	}
}

// HandleAlertEmail sends one queued email. A message ID that was already
// delivered by this worker is acknowledged without sending again.
func (w *MailWorker) HandleAlertEmail(ctx context.Context, msg *amqp.AlertEmailMessage) error {
	logger := log.FromContext(ctx).With(log.FieldMessageID, msg.ID)
	if at, ok := w.sent.Get(msg.ID); ok {
		logger.InfoContext(ctx, "Alert email already delivered, skipping", "delivered_at", at)
		return nil
	}

	logger.InfoContext(ctx, "Delivering alert email",
		log.FieldRecipient, msg.To,
		"queued_for", time.Since(msg.Timestamp).Round(time.Second))

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	if err := w.mailer.Send(sendCtx, msg.Message()); err != nil {
		return fmt.Errorf("send alert email %s: %w", msg.ID, err)
	}

	w.sent.Set(msg.ID, time.Now())
	return nil
}

// PurgeDelivered drops expired delivery records.
func (w *MailWorker) PurgeDelivered() int {
	return w.sent.PurgeExpired()
}
