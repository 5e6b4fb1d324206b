package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Applications []ApplicationConfig `yaml:"applications"`

	Publisher struct {
		StatsInterval time.Duration `yaml:"stats_interval"`
	} `yaml:"publisher"`

	Transport struct {
		Address          string        `yaml:"address"`
		ReadLimitBytes   int64         `yaml:"read_limit_bytes"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		PacketsPerSecond float64       `yaml:"packets_per_second"`
		Burst            int           `yaml:"burst"`
	} `yaml:"transport"`

	API struct {
		Address         string        `yaml:"address"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"api"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled    bool    `yaml:"enabled"`
		JaegerURL  string  `yaml:"jaeger_url"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// ApplicationConfig is one configured publishing application. ThreadCount is
// the worker-count hint forwarded to stream construction, not the number of
// dispatch goroutines: each application always runs exactly one worker.
type ApplicationConfig struct {
	Name        string `yaml:"name"`
	ThreadCount int    `yaml:"thread_count"`
	MaxStreams  int    `yaml:"max_streams"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if len(c.Applications) == 0 {
		return fmt.Errorf("applications must not be empty")
	}
	seen := make(map[string]bool)
	for i, app := range c.Applications {
		if app.Name == "" {
			return fmt.Errorf("applications[%d].name must not be empty", i)
		}
		if seen[app.Name] {
			return fmt.Errorf("applications[%d].name duplicated: %s", i, app.Name)
		}
		seen[app.Name] = true
		if app.ThreadCount < 0 {
			return fmt.Errorf("applications[%d].thread_count must be >= 0", i)
		}
	}

	if c.Publisher.StatsInterval < 0 {
		return fmt.Errorf("publisher.stats_interval must be >= 0")
	}

	if c.Transport.Address == "" {
		return fmt.Errorf("transport.address must not be empty")
	}
	if c.Transport.PacketsPerSecond < 0 {
		return fmt.Errorf("transport.packets_per_second must be >= 0")
	}
	if c.Transport.Burst < 0 {
		return fmt.Errorf("transport.burst must be >= 0")
	}

	if c.API.Address == "" {
		return fmt.Errorf("api.address must not be empty")
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must be set when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be in [0,1]")
		}
	}

	return nil
}

// Load reads, env-overrides, and validates a configuration file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Publisher.StatsInterval == 0 {
		c.Publisher.StatsInterval = 5 * time.Second
	}
	if c.Transport.Address == "" {
		c.Transport.Address = ":8081"
	}
	if c.Transport.WriteTimeout == 0 {
		c.Transport.WriteTimeout = 10 * time.Second
	}
	if c.API.Address == "" {
		c.API.Address = ":8080"
	}
	if c.API.ShutdownTimeout == 0 {
		c.API.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MEDIAPUB_API_ADDRESS"); v != "" {
		c.API.Address = v
	}
	if v := os.Getenv("MEDIAPUB_TRANSPORT_ADDRESS"); v != "" {
		c.Transport.Address = v
	}
	if v := os.Getenv("MEDIAPUB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MEDIAPUB_JAEGER_URL"); v != "" {
		c.Tracing.JaegerURL = v
	}
}
