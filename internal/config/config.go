// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config is the typed view of the process environment.
type Config struct {
	Address   string `env:"ADDRESS" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	StoreConfig

	AMQPURL string `env:"AMQP_URL"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	SendConcurrency   int           `env:"SEND_CONCURRENCY" envDefault:"10"`
	SendRatePerSecond float64       `env:"SEND_RATE_PER_SECOND" envDefault:"10"`
	SendBurst         int           `env:"SEND_BURST" envDefault:"10"`
	SendTimeout       time.Duration `env:"SEND_TIMEOUT" envDefault:"30s"`

	MaxUploadBytes int64    `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// StoreConfig selects and locates the backing store. It is all the migrate
// command needs.
type StoreConfig struct {
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME" envDefault:"mailmerge"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"mailmerge"`
}

// Load reads the optional env files into the environment and parses Config.
// Missing env files are ignored so the process can rely on real variables.
func Load(files ...string) (*Config, error) {
	if err := loadEnvFiles(files); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStore is Load restricted to the store settings.
func LoadStore(files ...string) (*StoreConfig, error) {
	if err := loadEnvFiles(files); err != nil {
		return nil, err
	}

	cfg := &StoreConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks value ranges env tags cannot express.
func (c *Config) Validate() error {
	if err := c.StoreConfig.Validate(); err != nil {
		return err
	}
	if c.SendConcurrency < 1 {
		return fmt.Errorf("SEND_CONCURRENCY must be at least 1")
	}
	if c.SendRatePerSecond <= 0 {
		return fmt.Errorf("SEND_RATE_PER_SECOND must be positive")
	}
	if c.SendBurst < 1 {
		return fmt.Errorf("SEND_BURST must be at least 1")
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("SEND_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c *StoreConfig) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMongo:
		return nil
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMongo, c.StoreDriver)
	}
}

// PostgresDSN returns DATABASE_URL, or a DSN assembled from the DB_* keys.
func (c *StoreConfig) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
