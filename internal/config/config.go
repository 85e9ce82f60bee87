package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type StoreBackend string

const (
	StoreBackendAidbox   StoreBackend = "aidbox"
	StoreBackendPostgres StoreBackend = "postgres"
)

type CacheBackend string

const (
	CacheBackendLRU   CacheBackend = "lru"
	CacheBackendRedis CacheBackend = "redis"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Moscow"`
	}

	HTTP struct {
		Port           string        `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host           string        `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
		RateLimitRPS   float64       `env:"HTTP_RATE_LIMIT_RPS" envDefault:"20"`
		RateLimitBurst int           `env:"HTTP_RATE_LIMIT_BURST" envDefault:"40"`
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"availability_engine:availability_engine"`
		BasicClients       []ConfigBasicClient
	}

	Store struct {
		Backend StoreBackend `env:"STORE_BACKEND" envDefault:"aidbox"`
	}

	Aidbox struct {
		URL      string        `env:"AIDBOX_URL"`
		Username string        `env:"AIDBOX_USERNAME"`
		Password string        `env:"AIDBOX_PASSWORD"`
		Timeout  time.Duration `env:"AIDBOX_TIMEOUT" envDefault:"10s"`
	}

	Postgres struct {
		DSN string `env:"POSTGRES_DSN"`
	}

	RabbitMQ struct {
		Enabled    bool   `env:"RABBITMQ_ENABLED"`
		URL        string `env:"RABBITMQ_URL"`
		Exchange   string `env:"RABBITMQ_EXCHANGE" envDefault:"scheduling"`
		Queue      string `env:"RABBITMQ_QUEUE" envDefault:"availability-engine.invalidate"`
		BindingKey string `env:"RABBITMQ_BINDING_KEY" envDefault:"*.availability-engine.#"`
	}

	Cache struct {
		Enabled   bool          `env:"CACHE_ENABLED"`
		Backend   CacheBackend  `env:"CACHE_BACKEND" envDefault:"lru"`
		SlotsSize int           `env:"CACHE_SLOTS_SIZE" envDefault:"1000"`
		TTL       time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Series struct {
		MaxOccurrences int `env:"SERIES_MAX_OCCURRENCES" envDefault:"500"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения и бэкендов к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))
	cfg.Store.Backend = StoreBackend(strings.ToLower(string(cfg.Store.Backend)))
	cfg.Cache.Backend = CacheBackend(strings.ToLower(string(cfg.Cache.Backend)))

	cfg.Auth.BasicClients = ParseBasicClients(cfg.Auth.BasicClientsString)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseBasicClients разбирает строку вида "user:pass,user2:pass2"
func ParseBasicClients(str string) []ConfigBasicClient {
	clients := []ConfigBasicClient{}
	clientPairs := strings.Split(str, ",")
	for _, pair := range clientPairs {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) == 2 && parts[0] != "" {
			clients = append(clients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}
	return clients
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendAidbox, StoreBackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheBackendLRU, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.Enabled {
		if c.Cache.SlotsSize <= 0 {
			return fmt.Errorf("cache size must be positive, got %d", c.Cache.SlotsSize)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
		}
	}

	if c.Series.MaxOccurrences <= 0 {
		return fmt.Errorf("series max occurrences must be positive, got %d", c.Series.MaxOccurrences)
	}

	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("RABBITMQ_URL is required when RabbitMQ is enabled")
	}

	return nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
