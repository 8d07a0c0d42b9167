// Package config loads the gateway configuration from an optional YAML
// file with APP_-prefixed environment overrides, e.g. APP_HTTP_PORT=9090
// overrides http.port.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "APP_"

type Config struct {
	ServiceName string `koanf:"servicename"`

	HTTP struct {
		Port int `koanf:"port"`
	} `koanf:"http"`

	// Backend is the marketplace REST API this gateway orchestrates.
	// BaseURL is host-only; the resource adapters own the /api prefix.
	Backend struct {
		BaseURL string `koanf:"baseurl"`
	} `koanf:"backend"`

	Redis struct {
		Addr       string        `koanf:"addr"`
		Namespace  string        `koanf:"namespace"`
		ProductTTL time.Duration `koanf:"productttl"`
	} `koanf:"redis"`

	CheckoutLog struct {
		Path string `koanf:"path"`
	} `koanf:"checkoutlog"`

	Cart struct {
		ReloadDelay time.Duration `koanf:"reloaddelay"`
	} `koanf:"cart"`
}

// Load reads the config file at path (skipped when the file does not
// exist) and applies environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Config{ServiceName: "marketplace-gateway"}
	defaults.HTTP.Port = 8080
	defaults.Backend.BaseURL = "http://localhost:8081"
	defaults.Redis.Addr = "localhost:6379"
	defaults.Redis.Namespace = "marketplace"
	defaults.Redis.ProductTTL = 5 * time.Minute
	defaults.CheckoutLog.Path = "checkout_logs.db"
	defaults.Cart.ReloadDelay = time.Second

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: read %q: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := defaults
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
