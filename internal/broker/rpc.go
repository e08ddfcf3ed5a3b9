package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/logging"
	"github.com/autozen/api-gateway/internal/metrics"
)

// Client issues one correlated RPC per Call over a backend's exchange.
// Each call gets its own exclusive auto-delete reply queue and correlation
// id, so concurrent calls never share state and cleanup cannot race another
// call's in-flight reply.
type Client struct {
	conn    Connector
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewClient creates an RPC client for one backend. timeout bounds the wait
// for each reply.
func NewClient(conn Connector, timeout time.Duration, logger *logging.Logger, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{conn: conn, timeout: timeout, logger: logger, metrics: m}
}

// Call publishes payload (merged with the operation_type tag) to the
// backend's exchange under routingKey and waits for the single matching
// reply. It returns the decoded reply envelope, or SourceTimeout when no
// reply arrives in time, or SourceUnavailable on transport failure. The
// reply queue and its consumer are torn down on every path; no broker
// resource outlives the call.
func (c *Client) Call(ctx context.Context, operationType, routingKey string, payload map[string]interface{}) (*Response, error) {
	start := time.Now()
	resp, err := c.call(ctx, operationType, routingKey, payload)
	c.record(operationType, err, time.Since(start))
	return resp, err
}

func (c *Client) call(ctx context.Context, operationType, routingKey string, payload map[string]interface{}) (*Response, error) {
	ch, err := c.conn.Channel(ctx)
	if err != nil {
		return nil, err
	}

	replyQueue := fmt.Sprintf("gateway.reply.%s.%s", c.conn.Name(), uuid.NewString())
	queue, err := ch.QueueDeclare(replyQueue, false, true, true, false, nil)
	if err != nil {
		return nil, errors.SourceUnavailable("Message broker is unavailable.").WithCause(err)
	}

	correlationID := uuid.NewString()
	consumerTag := correlationID

	deliveries, err := ch.Consume(queue.Name, consumerTag, false, true, false, false, nil)
	if err != nil {
		_, _ = ch.QueueDelete(queue.Name, false, false, false)
		return nil, errors.SourceUnavailable("Message broker is unavailable.").WithCause(err)
	}

	// Resource-safety invariant: the consumer and reply queue are released
	// whether the call succeeds, times out or fails.
	defer func() {
		_ = ch.Cancel(consumerTag, false)
		_, _ = ch.QueueDelete(queue.Name, false, false, false)
	}()

	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["operation_type"] = operationType

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Internal("Failed to encode request payload.", err)
	}

	if err := ch.PublishWithContext(ctx, c.conn.Exchange(), routingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: correlationID,
		ReplyTo:       queue.Name,
		Body:          encoded,
	}); err != nil {
		return nil, errors.SourceUnavailable("Message broker is unavailable.").WithCause(err)
	}

	c.logger.WithFields(map[string]interface{}{
		"backend":        c.conn.Name(),
		"operation":      operationType,
		"correlation_id": correlationID,
	}).Debug("rpc published")

	// The wait is bounded by the client's own timer, not the request
	// context: a client disconnect upstream does not abandon the reply.
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				return nil, errors.SourceUnavailable("Broker channel closed while awaiting reply.")
			}
			if delivery.CorrelationId != correlationID {
				// Should not happen on an exclusive queue; leave un-acked.
				c.logger.WithFields(map[string]interface{}{
					"backend":  c.conn.Name(),
					"expected": correlationID,
					"received": delivery.CorrelationId,
				}).Warn("rpc reply with mismatched correlation id ignored")
				continue
			}

			_ = delivery.Ack(false)
			resp, err := DecodeResponse(delivery.Body)
			if err != nil {
				return nil, errors.Internal("Malformed reply from backend.", err).
					WithDetails("correlation_id", correlationID)
			}
			return resp, nil

		case <-timer.C:
			c.logger.WithFields(map[string]interface{}{
				"backend":        c.conn.Name(),
				"operation":      operationType,
				"correlation_id": correlationID,
				"timeout":        c.timeout.String(),
			}).Error("rpc timed out waiting for reply")
			return nil, errors.SourceTimeout(fmt.Sprintf("Timeout waiting for response from %q backend.", c.conn.Name()))
		}
	}
}

func (c *Client) record(operation string, err error, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if se := errors.GetServiceError(err); se != nil {
		switch se.Code {
		case errors.CodeSourceTimeout:
			outcome = "timeout"
		case errors.CodeSourceUnavailable:
			outcome = "unavailable"
		default:
			outcome = "error"
		}
	} else if err != nil {
		outcome = "error"
	}
	c.metrics.RecordRPCCall(c.conn.Name(), operation, outcome, duration)
}
