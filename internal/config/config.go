package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPort           = 9101
	DefaultSlug           = "metrics"
	DefaultCollectTimeout = 10 * time.Second
)

// Families lists every collector family the exporter can run, in the order
// they register when the config does not say otherwise.
var Families = []string{"bandwidth", "cpu", "load", "memory", "network", "time", "uname"}

// Config is the top-level exporter configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Listen Listen `yaml:"listen"`
	Router Router `yaml:"router"`

	// Collectors is the ordered list of metric families to scrape.
	// Defaults to every known family except bandwidth, which reports the
	// same series as network from a different device endpoint.
	Collectors []string `yaml:"collectors"`

	// CollectTimeout bounds each collector's device call per scrape cycle.
	CollectTimeout time.Duration `yaml:"collect_timeout"`
}

// Listen holds the exporter's own HTTP serving settings.
type Listen struct {
	// IP is the local address to bind (empty = all interfaces).
	IP string `yaml:"ip"`

	// Port is the local TCP port to serve on.
	Port int `yaml:"port"`

	// Slug is the URL path the exposition document is served under,
	// without the leading slash.
	Slug string `yaml:"slug"`
}

// Router describes the monitored device and its web admin credentials.
type Router struct {
	// Address is the device's host or host:port, reached over plain HTTP.
	Address string `yaml:"address"`

	// Username is the web admin username for HTTP basic auth.
	Username string `yaml:"username"`

	// Password is the literal admin password. Prefer PasswordEnv.
	Password string `yaml:"password"`

	// PasswordEnv is the name of an environment variable holding the
	// admin password. Takes precedence over Password when set.
	PasswordEnv string `yaml:"password_env"`

	// HTTPID is the device's session token, sent as the first form field
	// of every request. Visible as http_id in the device's nvram dump.
	HTTPID string `yaml:"http_id"`
}

// ResolvedPassword returns the admin password, preferring the environment
// variable named by PasswordEnv over the literal Password field.
func (r Router) ResolvedPassword() string {
	if r.PasswordEnv != "" {
		if v := os.Getenv(r.PasswordEnv); v != "" {
			return v
		}
	}
	return r.Password
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	collectors := make([]string, 0, len(Families)-1)
	for _, f := range Families {
		if f != "bandwidth" {
			collectors = append(collectors, f)
		}
	}
	return &Config{
		Listen: Listen{
			Port: DefaultPort,
			Slug: DefaultSlug,
		},
		Collectors:     collectors,
		CollectTimeout: DefaultCollectTimeout,
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Listen.Port <= 0 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen.port %d out of range", cfg.Listen.Port)
	}
	if cfg.Listen.Slug == "" {
		return fmt.Errorf("listen.slug is required")
	}
	if cfg.Router.Address == "" {
		return fmt.Errorf("router.address is required")
	}
	if cfg.Router.Username == "" {
		return fmt.Errorf("router.username is required")
	}
	if cfg.Router.ResolvedPassword() == "" {
		return fmt.Errorf("router.password or router.password_env is required")
	}
	if cfg.Router.HTTPID == "" {
		return fmt.Errorf("router.http_id is required")
	}
	if cfg.CollectTimeout < 0 {
		return fmt.Errorf("collect_timeout must not be negative")
	}
	if len(cfg.Collectors) == 0 {
		return fmt.Errorf("collectors must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Collectors))
	for i, name := range cfg.Collectors {
		if !knownFamily(name) {
			return fmt.Errorf("collectors[%d]: unknown family %q", i, name)
		}
		if seen[name] {
			return fmt.Errorf("collectors[%d]: family %q listed twice", i, name)
		}
		seen[name] = true
	}
	return nil
}

func knownFamily(name string) bool {
	for _, f := range Families {
		if f == name {
			return true
		}
	}
	return false
}
