package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
)

// Producer handles publishing JSON messages to NATS subjects. It shares the
// client's connection; closing the client closes the producer.
type Producer struct {
	conn *nats.Conn
}

// NewProducerFromClient creates a producer over an existing connection
func NewProducerFromClient(client *Client) *Producer {
	return &Producer{conn: client.GetConn()}
}

// Publish marshals the message as JSON and sends it to the subject
func (p *Producer) Publish(subject string, message interface{}) error {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := p.conn.Publish(subject, msgBytes); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logger.Debug("Published message", logger.String("subject", subject))
	return nil
}
