package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/tkanos/gonfig"

	"paidpiper.com/nonce-gateway/log"
)

const (
	DispatchCorrelated = "correlated"
	DispatchSingle     = "single"
)

type jsonConfiguration struct {
	Port                 int
	LogLevel             string
	ClientToken          string
	ClientTokenUrl       string
	FetchTimeout         Duration
	ReturnUrlScheme      string
	DispatchMode         string
	PendingTimeout       Duration
	RecentCapacity       int
	GooglePayMerchantId  string
	OtlpEndpoint         string
	ServiceName          string
	KafkaBrokers         string
	KafkaTopic           string
	SandboxInvalidTokens string
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		if err != nil {
			return err
		}
		return nil
	default:
		return errors.New("invalid duration")
	}
}

type CredentialConfig struct {
	ClientToken     string
	ClientTokenURL  string
	FetchTimeout    time.Duration
	ReturnURLScheme string
}

// DispatchConfig selects how terminal events find their caller.
// Mode "single" reproduces the one-slot behavior where a new operation
// displaces a pending one. A negative PendingTimeout never expires entries.
type DispatchConfig struct {
	Mode           string
	PendingTimeout time.Duration
	RecentCapacity int
}

type GooglePayConfig struct {
	MerchantID string
}

type TracingConfig struct {
	Endpoint    string
	ServiceName string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type SandboxConfig struct {
	InvalidTokens []string
}

type Configuration struct {
	Port       int
	LogLevel   string
	Credential CredentialConfig
	Dispatch   DispatchConfig
	GooglePay  GooglePayConfig
	Tracing    *TracingConfig
	Kafka      KafkaConfig
	Sandbox    SandboxConfig
}

func DefaultCfg() *Configuration {
	return &Configuration{
		Port:     28080,
		LogLevel: "info",
		Credential: CredentialConfig{
			FetchTimeout: 10 * time.Second,
		},
		Dispatch: DispatchConfig{
			Mode:           DispatchCorrelated,
			PendingTimeout: 5 * time.Minute,
			RecentCapacity: 4096,
		},
		Kafka: KafkaConfig{
			Topic: "nonce-outcomes.v1",
		},
		Sandbox: SandboxConfig{
			InvalidTokens: []string{"invalid"},
		},
	}
}

func ParseConfiguration(configFile string) (*Configuration, error) {
	rawConfig := jsonConfiguration{}

	err := gonfig.GetConf(configFile, &rawConfig)
	if err != nil {
		log.Errorf("Read json config error: %v", err)
		return nil, errors.Wrap(err, 0)
	}

	instance := &Configuration{
		Port:     rawConfig.Port,
		LogLevel: rawConfig.LogLevel,
		Credential: CredentialConfig{
			ClientToken:     rawConfig.ClientToken,
			ClientTokenURL:  rawConfig.ClientTokenUrl,
			FetchTimeout:    rawConfig.FetchTimeout.Duration,
			ReturnURLScheme: rawConfig.ReturnUrlScheme,
		},
		Dispatch: DispatchConfig{
			Mode:           strings.ToLower(strings.TrimSpace(rawConfig.DispatchMode)),
			PendingTimeout: rawConfig.PendingTimeout.Duration,
			RecentCapacity: rawConfig.RecentCapacity,
		},
		GooglePay: GooglePayConfig{
			MerchantID: rawConfig.GooglePayMerchantId,
		},
		Kafka: KafkaConfig{
			Brokers: splitAndTrim(rawConfig.KafkaBrokers),
			Topic:   rawConfig.KafkaTopic,
		},
		Sandbox: SandboxConfig{
			InvalidTokens: splitAndTrim(rawConfig.SandboxInvalidTokens),
		},
	}
	if rawConfig.OtlpEndpoint != "" {
		instance.Tracing = &TracingConfig{
			Endpoint:    rawConfig.OtlpEndpoint,
			ServiceName: rawConfig.ServiceName,
		}
	}

	defCfg := DefaultCfg()
	if instance.Port == 0 {
		instance.Port = defCfg.Port
	}
	if instance.LogLevel == "" {
		instance.LogLevel = defCfg.LogLevel
	}
	if instance.Credential.FetchTimeout == 0 {
		instance.Credential.FetchTimeout = defCfg.Credential.FetchTimeout
	}
	switch instance.Dispatch.Mode {
	case DispatchCorrelated, DispatchSingle:
	case "":
		instance.Dispatch.Mode = defCfg.Dispatch.Mode
	default:
		return nil, errors.Errorf("unknown dispatch mode %q", rawConfig.DispatchMode)
	}
	if instance.Dispatch.PendingTimeout == 0 {
		instance.Dispatch.PendingTimeout = defCfg.Dispatch.PendingTimeout
	}
	if instance.Dispatch.RecentCapacity == 0 {
		instance.Dispatch.RecentCapacity = defCfg.Dispatch.RecentCapacity
	}
	if instance.Kafka.Topic == "" {
		instance.Kafka.Topic = defCfg.Kafka.Topic
	}
	if len(instance.Sandbox.InvalidTokens) == 0 {
		instance.Sandbox.InvalidTokens = defCfg.Sandbox.InvalidTokens
	}
	if instance.Tracing != nil && instance.Tracing.ServiceName == "" {
		instance.Tracing.ServiceName = "nonce-gateway"
	}
	return instance, nil
}

// ParseConfig reads the file named by the first command line argument,
// falling back to config.json.
func ParseConfig() (*Configuration, error) {
	configPath := "config.json"
	if len(os.Args) >= 2 {
		configPath = os.Args[1]
	}
	return ParseConfiguration(configPath)
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
