package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Default values
const (
	DefaultPort        = "8080"
	DefaultBaseURL     = "https://query2.finance.yahoo.com"
	DefaultCookieURL   = "https://fc.yahoo.com"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultLogLevel    = "info"
	DefaultEnvFilename = ".env"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Provider ProviderConfig `koanf:"provider"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"             validate:"required,numeric"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// ProviderConfig configures the upstream market data client
type ProviderConfig struct {
	BaseURL   string        `koanf:"base_url"   validate:"required,url"`
	CookieURL string        `koanf:"cookie_url" validate:"required,url"`
	UserAgent string        `koanf:"user_agent" validate:"required"`
	Timeout   time.Duration `koanf:"timeout"    validate:"gt=0"`
	CrumbTTL  time.Duration `koanf:"crumb_ttl"  validate:"gt=0"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

// envToPath maps environment variables that do not follow the SECTION_KEY form
var envToPath = map[string]string{
	"PORT": "server.port",
}

var sections = map[string]struct{}{"server": {}, "provider": {}, "log": {}}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Provider: ProviderConfig{
			BaseURL:   DefaultBaseURL,
			CookieURL: DefaultCookieURL,
			UserAgent: DefaultUserAgent,
			Timeout:   10 * time.Second,
			CrumbTTL:  time.Hour,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// New loads defaults, an optional .env file and environment variables, in
// increasing order of precedence, and validates the result
func New() (*Config, error) {
	return Load(DefaultEnvFilename)
}

// Load is New with an explicit dotenv file; an empty name skips it
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: "",
		TransformFunc: func(key string, value string) (string, any) {
			if path, ok := envToPath[key]; ok {
				return path, value
			}
			path := transformEnvKey(key)
			section, _, _ := strings.Cut(path, ".")
			if _, ok := sections[section]; !ok || path == section {
				return "", nil
			}
			return path, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// transformEnvKey converts environment variable names to koanf paths.
// PROVIDER_BASE_URL -> provider.base_url
func transformEnvKey(s string) string {
	s = strings.ToLower(s)

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_'
	})

	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	return parts[0] + "." + strings.Join(parts[1:], "_")
}
