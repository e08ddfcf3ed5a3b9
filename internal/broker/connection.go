// Package broker implements the AMQP transport: a self-healing per-backend
// connection manager and a correlated request/response RPC client.
package broker

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/logging"
)

// Channel is the subset of AMQP channel operations the RPC client needs.
// *amqp.Channel satisfies it; tests substitute a fake.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Cancel(consumer string, noWait bool) error
	QueueDelete(name string, ifUnused, ifEmpty, noWait bool) (int, error)
}

// Connector hands out a live channel bound to a declared exchange.
type Connector interface {
	// Channel returns a usable channel, transparently reconnecting if the
	// previous connection died.
	Channel(ctx context.Context) (Channel, error)
	// Exchange is the backend's direct exchange name.
	Exchange() string
	// Name identifies the backend (used in queue names, logs and metrics).
	Name() string
}

// Manager owns one lazily-established connection/channel/exchange triple for
// a single backend. All concurrent calls to that backend share it; only the
// manager recreates it. Reconnection is idempotent, so redundant concurrent
// reconnect attempts serialize behind the mutex and are harmless.
type Manager struct {
	name           string
	url            string
	exchange       string
	connectTimeout time.Duration
	logger         *logging.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewManager creates a manager for one backend. No connection is made until
// the first Channel call.
func NewManager(name, url, exchange string, connectTimeout time.Duration, logger *logging.Logger) *Manager {
	return &Manager{
		name:           name,
		url:            url,
		exchange:       exchange,
		connectTimeout: connectTimeout,
		logger:         logger,
	}
}

// Name returns the backend identifier.
func (m *Manager) Name() string { return m.name }

// Exchange returns the backend's exchange name.
func (m *Manager) Exchange() string { return m.exchange }

// Channel returns a live channel, dialing and declaring the exchange on
// first use and after any connection loss. Callers never observe a
// "not connected" state: they get a handle or a SourceUnavailable error.
func (m *Manager) Channel(ctx context.Context) (Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.SourceUnavailable("").WithCause(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.alive() {
		return m.ch, nil
	}

	if err := m.reconnect(); err != nil {
		return nil, err
	}
	return m.ch, nil
}

func (m *Manager) alive() bool {
	return m.conn != nil && !m.conn.IsClosed() && m.ch != nil && !m.ch.IsClosed()
}

func (m *Manager) reconnect() error {
	if m.conn != nil && !m.conn.IsClosed() {
		_ = m.conn.Close()
	}

	conn, err := amqp.DialConfig(m.url, amqp.Config{
		Dial:       amqp.DefaultDial(m.connectTimeout),
		Properties: amqp.Table{"connection_name": "api-gateway"},
	})
	if err != nil {
		m.logger.WithError(err).WithFields(map[string]interface{}{
			"backend": m.name,
		}).Error("broker connection failed")
		return errors.SourceUnavailable("Message broker is unavailable.").WithCause(err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errors.SourceUnavailable("Message broker is unavailable.").WithCause(err)
	}

	if err := ch.ExchangeDeclare(m.exchange, "direct", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return errors.SourceUnavailable("Message broker is unavailable.").WithCause(err)
	}

	m.conn = conn
	m.ch = ch
	m.logger.WithFields(map[string]interface{}{
		"backend":  m.name,
		"exchange": m.exchange,
	}).Info("broker connection established")
	return nil
}

// Close tears the connection down at process shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	m.ch = nil
	return err
}
