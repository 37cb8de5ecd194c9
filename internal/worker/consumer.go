package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/pkg/queue"
)

// receiveBackoff is how long the consumer sleeps after a receive error
// before polling again.
const receiveBackoff = 5 * time.Second

// Handler processes one queue message. A returned error leaves the
// message in flight so the queue redelivers it.
type Handler func(ctx context.Context, msg queue.Message) error

// Consumer is a long-poll loop over one queue. Messages are deleted only
// after their handler succeeds.
type Consumer struct {
	queue    *queue.Queue
	queueURL string
	handler  Handler
	logger   *zap.Logger
}

func NewConsumer(q *queue.Queue, queueURL string, handler Handler, logger *zap.Logger) *Consumer {
	return &Consumer{
		queue:    q,
		queueURL: queueURL,
		handler:  handler,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := c.queue.Receive(ctx, c.queueURL)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("queue receive failed", zap.String("queue", c.queueURL), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(receiveBackoff):
			}
			continue
		}

		for _, msg := range messages {
			if err := c.handler(ctx, msg); err != nil {
				c.logger.Error("message handling failed",
					zap.String("queue", c.queueURL),
					zap.String("message", msg.ID),
					zap.Error(err))
				continue
			}
			if err := c.queue.Delete(ctx, c.queueURL, msg.ReceiptHandle); err != nil {
				c.logger.Error("message delete failed",
					zap.String("queue", c.queueURL),
					zap.String("message", msg.ID),
					zap.Error(err))
			}
		}
	}
}
