package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_PUBLIC_KEY", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Broker.RPCTimeoutSec)
	assert.Equal(t, 5*time.Second, cfg.Broker.RPCTimeout())
	assert.Equal(t, 10, cfg.JWT.LeewaySec)
	assert.Equal(t, "GATEWAY-AUTH-EXCHANGE.direct", cfg.Broker.Auth.Exchange)
	assert.Equal(t, "PAYMENT.all", cfg.Broker.Payment.RoutingKey)
	assert.Equal(t, "RS256", cfg.JWT.Algorithm)
}

func TestLoad_MissingJWTKey(t *testing.T) {
	_, err := Load("")
	require.Error(t, err, "Load() with no JWT key should fail validation")
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Setenv("JWT_PUBLIC_KEY", "test-secret")

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	data := []byte(`
server:
  addr: ":9000"
broker:
  rpc_timeout_sec: 3
  auth:
    exchange: "AUTH-X"
    routing_key: "AUTH.all"
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Broker.RPCTimeoutSec)
	assert.Equal(t, "AUTH-X", cfg.Broker.Auth.Exchange)
	// Fields the file omits keep their defaults.
	assert.Equal(t, "GATEWAY-PAYMENT-EXCHANGE.direct", cfg.Broker.Payment.Exchange)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_PUBLIC_KEY", "test-secret")
	t.Setenv("RPC_TIMEOUT_SEC", "7")
	t.Setenv("GATEWAY_ADDR", ":8443")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Broker.RPCTimeoutSec)
	assert.Equal(t, ":8443", cfg.Server.Addr)
}

func TestLoad_AssembledBrokerURL(t *testing.T) {
	t.Setenv("JWT_PUBLIC_KEY", "test-secret")
	t.Setenv("RABBITMQ_HOST", "mq.internal")
	t.Setenv("RABBITMQ_LOGIN", "gateway")
	t.Setenv("RABBITMQ_PASSWORD", "pw")
	t.Setenv("RABBITMQ_PORT", "5673")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "amqp://gateway:pw@mq.internal:5673/", cfg.Broker.URL)
}

func TestLoad_ExplicitURLWinsOverAssembled(t *testing.T) {
	t.Setenv("JWT_PUBLIC_KEY", "test-secret")
	t.Setenv("RABBITMQ_URL", "amqp://direct:pw@mq.direct:5672/")
	t.Setenv("RABBITMQ_HOST", "mq.assembled")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "amqp://direct:pw@mq.direct:5672/", cfg.Broker.URL)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_PUBLIC_KEY", "test-secret")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err, "a missing config file falls back to defaults")
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("JWT_PUBLIC_KEY", "test-secret")
	t.Setenv("RPC_TIMEOUT_SEC", "0")

	_, err := Load("")
	require.Error(t, err)
}
