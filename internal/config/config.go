package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Config struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT,default=3000" validate:"min=1,max=65535"`
	StaticDir       string        `env:"STATIC_DIR"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	ProfanityWords  string        `env:"PROFANITY_WORDS"`
	SanitizeText    bool          `env:"SANITIZE_MESSAGES,default=false"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE,default=4096" validate:"min=64"`
	SendBuffer      int           `env:"SEND_BUFFER,default=64" validate:"min=1"`
	PingInterval    time.Duration `env:"PING_INTERVAL,default=54s" validate:"min=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
}

func Load() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address built from Host and Port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Words returns the custom profanity list, or nil when the built-in list
// should be used.
func (c *Config) Words() []string {
	if strings.TrimSpace(c.ProfanityWords) == "" {
		return nil
	}
	var words []string
	for _, w := range strings.Split(c.ProfanityWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
