package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete storefront configuration, loadable from
// environment variables (STOREFRONT_ prefix) or YAML config files. Command
// line arguments are reserved for commands, so flag loading is disabled.
type Config struct {
	StoreURL       string        `default:"http://localhost:3000" usage:"Base URL of the document store"`
	RequestTimeout time.Duration `default:"10s" usage:"Timeout for a single store request"`
	JournalPath    string        `usage:"Path of the checkout reconcile journal"`
	Throttle       ThrottleConfig
}

// ThrottleConfig controls the client-side request throttle.
type ThrottleConfig struct {
	Max    int           `default:"0" usage:"Max outgoing requests per window (0 disables)"`
	Window time.Duration `default:"1s" usage:"Throttle window duration"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, and applies defaults for values with no natural env mapping.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		SkipFlags: true,
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults maps the plain STORE_URL variable used by the store's own
// tooling and picks a journal location under the user's home directory.
func (c *Config) applyDefaults() {
	if v := os.Getenv("STORE_URL"); v != "" && c.StoreURL == "http://localhost:3000" {
		c.StoreURL = v
	}
	if c.JournalPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			c.JournalPath = ".storefront-journal.json"
			return
		}
		c.JournalPath = filepath.Join(home, ".storefront", "journal.json")
	}
}
