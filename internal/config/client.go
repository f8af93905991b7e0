package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultClientConfigPath = "todo.toml"

// ClientConfig configures the terminal client.
type ClientConfig struct {
	BaseURL        string        `toml:"base_url"`
	PageSize       int           `toml:"page_size"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	LogFile        string        `toml:"log_file"`
	LogLevel       string        `toml:"log_level"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:        "http://localhost:8080/api",
		PageSize:       10,
		RequestTimeout: 10 * time.Second,
		LogFile:        "todo.log",
		LogLevel:       "info",
	}
}

// LoadClient reads path over the defaults. A missing file is not an error.
// TODO_API_URL, when set, wins over base_url.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ClientConfig{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if v := os.Getenv("TODO_API_URL"); v != "" {
		cfg.BaseURL = v
	}

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: must be an http(s) URL", c.BaseURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid page_size %d: must be positive", c.PageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request_timeout %s: must be positive", c.RequestTimeout)
	}
	return nil
}
