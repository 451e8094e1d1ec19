package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseConfigurationDefaults(t *testing.T) {
	cfg, err := ParseConfiguration(writeConfig(t, `{"ClientToken":"sandbox_token"}`))
	require.NoError(t, err)

	def := DefaultCfg()
	assert.Equal(t, def.Port, cfg.Port)
	assert.Equal(t, "sandbox_token", cfg.Credential.ClientToken)
	assert.Equal(t, 10*time.Second, cfg.Credential.FetchTimeout)
	assert.Equal(t, DispatchCorrelated, cfg.Dispatch.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Dispatch.PendingTimeout)
	assert.Equal(t, def.Kafka.Topic, cfg.Kafka.Topic)
	assert.Equal(t, []string{"invalid"}, cfg.Sandbox.InvalidTokens)
	assert.Nil(t, cfg.Tracing)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestParseConfigurationValues(t *testing.T) {
	cfg, err := ParseConfiguration(writeConfig(t, `{
		"Port": 9000,
		"DispatchMode": "Single",
		"PendingTimeout": "30s",
		"FetchTimeout": "2s",
		"KafkaBrokers": "a:9092, b:9092",
		"OtlpEndpoint": "http://collector:4318",
		"GooglePayMerchantId": "merchant"
	}`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, DispatchSingle, cfg.Dispatch.Mode)
	assert.Equal(t, 30*time.Second, cfg.Dispatch.PendingTimeout)
	assert.Equal(t, 2*time.Second, cfg.Credential.FetchTimeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "merchant", cfg.GooglePay.MerchantID)
	require.NotNil(t, cfg.Tracing)
	assert.Equal(t, "nonce-gateway", cfg.Tracing.ServiceName)
}

func TestParseConfigurationRejectsUnknownMode(t *testing.T) {
	_, err := ParseConfiguration(writeConfig(t, `{"DispatchMode":"fifo"}`))
	assert.Error(t, err)
}

func TestParseConfigurationMissingFile(t *testing.T) {
	_, err := ParseConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNegativePendingTimeoutDisablesExpiry(t *testing.T) {
	cfg, err := ParseConfiguration(writeConfig(t, `{"PendingTimeout": "-1s"}`))
	require.NoError(t, err)
	assert.Equal(t, -time.Second, cfg.Dispatch.PendingTimeout)
}
