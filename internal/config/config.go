// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Redis     RedisConfig     `koanf:"redis"`
	Identity  IdentityConfig  `koanf:"identity"`
	Session   SessionConfig   `koanf:"session"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Admin     AdminConfig     `koanf:"admin"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
}

type MongoConfig struct {
	URL            string        `koanf:"url"`
	Database       string        `koanf:"database"`
	MaxPoolSize    uint64        `koanf:"max_pool_size"`
	MinPoolSize    uint64        `koanf:"min_pool_size"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	QueryTimeout   time.Duration `koanf:"query_timeout"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

// IdentityConfig describes the external identity provider whose ID tokens
// are accepted on login.
type IdentityConfig struct {
	ClientID string   `koanf:"client_id"`
	JWKSURL  string   `koanf:"jwks_url"`
	Issuers  []string `koanf:"issuers"`
}

// SessionConfig holds the shared secret and lifetime of the session tokens
// this service mints.
type SessionConfig struct {
	Secret        string `koanf:"secret"`
	Algorithm     string `koanf:"algorithm"`
	ExpireMinutes int    `koanf:"expire_minutes"`
	Issuer        string `koanf:"issuer"`
}

type RateLimitConfig struct {
	Requests       int           `koanf:"requests"`
	Window         time.Duration `koanf:"window"`
	Burst          int           `koanf:"burst"`
	RedeemRequests int           `koanf:"redeem_requests"`
	RedeemBurst    int           `koanf:"redeem_burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type AdminConfig struct {
	Subjects []string `koanf:"subjects"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

// LoadStore loads configuration for tools that only talk to the document
// store, so only the store settings are validated.
func LoadStore(configPath string) (*Config, error) {
	c, err := read(configPath)
	if err != nil {
		return nil, err
	}

	if err := validateStore(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func load(configPath string) (*Config, error) {
	c, err := read(configPath)
	if err != nil {
		return nil, err
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func read(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return c, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Ascend API",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8001,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",
		"server.max_body_bytes":   1 << 20,

		"mongo.database":        "ascend",
		"mongo.max_pool_size":   50,
		"mongo.min_pool_size":   5,
		"mongo.connect_timeout": "10s",
		"mongo.query_timeout":   "5s",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"identity.jwks_url": "https://www.googleapis.com/oauth2/v3/certs",
		"identity.issuers": []string{
			"accounts.google.com",
			"https://accounts.google.com",
		},

		"session.algorithm":      "HS256",
		"session.expire_minutes": 43200,
		"session.issuer":         "ascend-api",

		"rate_limit.requests":        100,
		"rate_limit.window":          "1m",
		"rate_limit.burst":           20,
		"rate_limit.redeem_requests": 10,
		"rate_limit.redeem_burst":    5,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "ascend-api",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"MONGO_URL":                   "mongo.url",
	"DB_NAME":                     "mongo.database",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"MAX_BODY_BYTES":              "server.max_body_bytes",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"GOOGLE_CLIENT_ID":            "identity.client_id",
	"GOOGLE_JWKS_URL":             "identity.jwks_url",
	"JWT_SECRET":                  "session.secret",
	"JWT_ALGORITHM":               "session.algorithm",
	"JWT_EXPIRATION_MINUTES":      "session.expire_minutes",
	"JWT_ISSUER":                  "session.issuer",
	"CORS_ORIGINS":                "cors.allowed_origins",
	"ADMIN_SUBJECTS":              "admin.subjects",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"RATE_LIMIT_REDEEM_REQUESTS":  "rate_limit.redeem_requests",
	"RATE_LIMIT_REDEEM_BURST":     "rate_limit.redeem_burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

var envListKeys = map[string]bool{
	"cors.allowed_origins": true,
	"admin.subjects":       true,
}

// envValue maps an environment variable onto its config key. Keys that
// hold lists accept comma separated values.
func envValue(name, value string) (string, any) {
	key, ok := envKeyMap[name]
	if !ok {
		return "", nil
	}

	if envListKeys[key] {
		parts := strings.Split(value, ",")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		return key, items
	}

	return key, value
}

func validateStore(c *Config) error {
	if c.Mongo.URL == "" {
		return fmt.Errorf("MONGO_URL is required")
	}

	if c.Mongo.Database == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Mongo.QueryTimeout <= 0 {
		return fmt.Errorf("mongo.query_timeout must be positive")
	}

	return nil
}

func validate(c *Config) error {
	if err := validateStore(c); err != nil {
		return err
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Identity.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Session.ExpireMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Expiry is the lifetime of an issued session token.
func (s SessionConfig) Expiry() time.Duration {
	return time.Duration(s.ExpireMinutes) * time.Minute
}
