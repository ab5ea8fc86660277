package nats

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
)

// MessageHandler is a function that processes NATS messages
type MessageHandler func(message []byte) error

// Consumer is a subscription to a single subject. It shares the client's
// connection; Stop only unsubscribes.
type Consumer struct {
	subscription *nats.Subscription
}

// NewConsumerFromClient subscribes to a subject with an optional queue group.
// When queueGroup is non-empty the subscription load-balances across service
// instances. Handler errors are logged, not redelivered.
func NewConsumerFromClient(client *Client, subject, queueGroup string, handler MessageHandler) (*Consumer, error) {
	msgHandler := func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			logger.Warn("Error processing message",
				logger.String("subject", subject),
				logger.String("queue_group", queueGroup),
				logger.Err(err))
		}
	}

	conn := client.GetConn()
	var (
		sub *nats.Subscription
		err error
	)
	if queueGroup != "" {
		sub, err = conn.QueueSubscribe(subject, queueGroup, msgHandler)
	} else {
		sub, err = conn.Subscribe(subject, msgHandler)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject: %w", err)
	}

	return &Consumer{subscription: sub}, nil
}

// Stop unsubscribes the consumer
func (c *Consumer) Stop() {
	if c.subscription != nil {
		c.subscription.Unsubscribe()
		c.subscription = nil
	}
}
