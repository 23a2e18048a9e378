// Package config handles engine configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/John-sanpe/suricata/internal/log"
)

// EngineConfig is the top-level static configuration.
// Maps to the `engine:` root key in YAML.
type EngineConfig struct {
	Node    NodeConfig     `mapstructure:"node"`
	Capture CaptureConfig  `mapstructure:"capture"`
	Parsers []ParserConfig `mapstructure:"parsers"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Log     log.Config     `mapstructure:"log"`
}

// configRoot wraps EngineConfig under the `engine:` YAML key.
type configRoot struct {
	Engine EngineConfig `mapstructure:"engine"`
}

// NodeConfig contains node identification settings.
type NodeConfig struct {
	Hostname string            `mapstructure:"hostname"` // Empty = os.Hostname()
	Tags     map[string]string `mapstructure:"tags"`
}

// CaptureConfig selects the packet source.
type CaptureConfig struct {
	Type string `mapstructure:"type"` // "file" (pcap replay)
	File string `mapstructure:"file"` // pcap path when type=file
	BPF  string `mapstructure:"bpf"`  // optional BPF filter expression
}

// ParserConfig names an application-layer parser plugin plus its options.
type ParserConfig struct {
	Name    string         `mapstructure:"name"`
	Options map[string]any `mapstructure:"options"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// Load reads and validates the engine configuration from path.
func Load(path string) (*EngineConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variable overrides: key "engine.log.level" → env "ENGINE_LOG_LEVEL".
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Engine

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that viper defaults cannot express.
func (c *EngineConfig) Validate() error {
	switch c.Capture.Type {
	case "file":
		if c.Capture.File == "" {
			return fmt.Errorf("capture.file is required when capture.type is \"file\"")
		}
	default:
		return fmt.Errorf("unsupported capture.type: %q", c.Capture.Type)
	}
	for i, p := range c.Parsers {
		if p.Name == "" {
			return fmt.Errorf("parsers[%d].name is required", i)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.capture.type", "file")

	v.SetDefault("engine.log.level", "info")
	v.SetDefault("engine.log.format", "text")
	v.SetDefault("engine.log.file.enabled", false)
	v.SetDefault("engine.log.file.max_size_mb", 100)
	v.SetDefault("engine.log.file.max_age_days", 30)
	v.SetDefault("engine.log.file.max_backups", 5)
	v.SetDefault("engine.log.file.compress", true)

	v.SetDefault("engine.metrics.enabled", false)
	v.SetDefault("engine.metrics.listen", ":9091")
	v.SetDefault("engine.metrics.path", "/metrics")
}
