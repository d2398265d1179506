package taskgate

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/taskgate/taskgate/policy"
	"github.com/taskgate/taskgate/service/channel"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML; the zero value is useful as every
// nested field inherits its package default.
type Config struct {
	Channel      ChannelConfig      `json:"channel" yaml:"channel"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
	Store        StoreConfig        `json:"store" yaml:"store"`
	Policy       *policy.Config     `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// ChannelConfig controls the frontend transport.
type ChannelConfig struct {
	Buffer int `json:"buffer" yaml:"buffer"`
}

// OrchestratorConfig controls the approval pipeline.
type OrchestratorConfig struct {
	// PromptTimeout bounds the human wait, e.g. "5m"; empty disables it.
	PromptTimeout string `json:"promptTimeout" yaml:"promptTimeout"`
}

// StoreConfig selects where durable state lives. An empty BaseURL keeps
// everything in memory.
type StoreConfig struct {
	// BaseURL roots the durable stores (settings, relays, permissions,
	// prompt journal), e.g. "file:///var/lib/taskgate".
	BaseURL string `json:"baseURL" yaml:"baseURL"`

	// SecretsURL roots the encrypted secret vault; defaults to
	// BaseURL + "/secrets" when BaseURL is set.
	SecretsURL string `json:"secretsURL" yaml:"secretsURL"`

	// SecretsKey is the scy encryption key, e.g. "blowfish://default".
	SecretsKey string `json:"secretsKey" yaml:"secretsKey"`

	// SensitiveKeys lists setting keys whose values are encrypted at rest.
	SensitiveKeys []string `json:"sensitiveKeys" yaml:"sensitiveKeys"`
}

// DefaultConfig returns a Config populated with package defaults.
func DefaultConfig() *Config {
	return &Config{
		Channel:      ChannelConfig{Buffer: channel.DefaultConfig().Buffer},
		Orchestrator: OrchestratorConfig{PromptTimeout: "5m"},
	}
}

// Validate returns an error describing invalid settings, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Channel.Buffer < 0 {
		return fmt.Errorf("channel.buffer must be >= 0")
	}
	if c.Orchestrator.PromptTimeout != "" {
		if _, err := time.ParseDuration(c.Orchestrator.PromptTimeout); err != nil {
			return fmt.Errorf("orchestrator.promptTimeout: %w", err)
		}
	}
	if c.Policy != nil {
		if _, err := policy.FromConfig(c.Policy); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	return nil
}

// PromptTimeout returns the parsed prompt deadline; zero when disabled.
func (c *Config) PromptTimeout() time.Duration {
	if c == nil || c.Orchestrator.PromptTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Orchestrator.PromptTimeout)
	if err != nil {
		return 0
	}
	return d
}

// LoadConfig reads a YAML config document from any afs-supported URL.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
