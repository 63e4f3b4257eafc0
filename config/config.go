package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Environment string         `yaml:"environment"`
	Log         LogConfig      `yaml:"log"`
	HTTP        HTTPConfig     `yaml:"http"`
	GRPC        GRPCConfig     `yaml:"grpc"`
	Storage     StorageConfig  `yaml:"storage"`
	Database    DatabaseConfig `yaml:"database"`
	Mongo       MongoConfig    `yaml:"mongo"`
	Redis       RedisConfig    `yaml:"redis"`
	Kafka       KafkaConfig    `yaml:"kafka"`
	Booking     BookingConfig  `yaml:"booking"`
	Worker      WorkerConfig   `yaml:"worker"`
	Auth        AuthConfig     `yaml:"auth"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	SwaggerDir     string   `yaml:"swagger_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// ConnectTimeoutSeconds bounds the initial connect and ping.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
}

// ResolvedURI substitutes the <password> placeholder used by hosted
// connection strings.
func (m MongoConfig) ResolvedURI() string {
	return strings.ReplaceAll(m.URI, "<password>", m.Password)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
	// PublishAttempts bounds delivery tries per booking event.
	PublishAttempts int `yaml:"publish_attempts"`
}

type BookingConfig struct {
	MaxAttempts           int `yaml:"max_attempts"`
	LockTTLSeconds        int `yaml:"lock_ttl_seconds"`
	LockWaitMillis        int `yaml:"lock_wait_millis"`
	EventsCacheTTLSeconds int `yaml:"events_cache_ttl_seconds"`
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (b BookingConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitMillis) * time.Millisecond
}

func (b BookingConfig) EventsCacheTTL() time.Duration {
	return time.Duration(b.EventsCacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	AuditIntervalMinutes int `yaml:"audit_interval_minutes"`
}

type AuthConfig struct {
	JWTSecret     string   `yaml:"jwt_secret"`
	TokenTTLHours int      `yaml:"token_ttl_hours"`
	BcryptCost    int      `yaml:"bcrypt_cost"`
	AdminEmails   []string `yaml:"admin_emails"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig reads the YAML file at path, applies .env and environment
// overrides, fills defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Mongo.URI, "MONGO_URI")
	setString(&c.Mongo.Password, "MONGO_PASSWORD")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")

	if port := os.Getenv("PORT"); port != "" {
		c.HTTP.Address = ":" + port
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = strings.Split(brokers, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":5000"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMongo
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "music_freak"
	}
	if c.Mongo.ConnectTimeoutSeconds == 0 {
		c.Mongo.ConnectTimeoutSeconds = 10
	}
	if c.Kafka.BookingTopic == "" {
		c.Kafka.BookingTopic = "bookings"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "music-freak-worker"
	}
	if c.Kafka.PublishAttempts == 0 {
		c.Kafka.PublishAttempts = 3
	}
	if c.Booking.MaxAttempts == 0 {
		c.Booking.MaxAttempts = 3
	}
	if c.Booking.LockTTLSeconds == 0 {
		c.Booking.LockTTLSeconds = 10
	}
	if c.Booking.LockWaitMillis == 0 {
		c.Booking.LockWaitMillis = 5000
	}
	if c.Booking.EventsCacheTTLSeconds == 0 {
		c.Booking.EventsCacheTTLSeconds = 60
	}
	if c.Worker.AuditIntervalMinutes == 0 {
		c.Worker.AuditIntervalMinutes = 15
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 7 * 24
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	for i, email := range c.Auth.AdminEmails {
		c.Auth.AdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri is required for the mongo driver"))
		}
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			errs = append(errs, errors.New("database.url or database.host is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost %d out of range [4,31]", c.Auth.BcryptCost))
	}
	if c.Booking.MaxAttempts < 1 {
		errs = append(errs, errors.New("booking.max_attempts must be positive"))
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"booking.lock_ttl_seconds", c.Booking.LockTTLSeconds},
		{"booking.lock_wait_millis", c.Booking.LockWaitMillis},
		{"booking.events_cache_ttl_seconds", c.Booking.EventsCacheTTLSeconds},
		{"worker.audit_interval_minutes", c.Worker.AuditIntervalMinutes},
		{"kafka.publish_attempts", c.Kafka.PublishAttempts},
		{"mongo.connect_timeout_seconds", c.Mongo.ConnectTimeoutSeconds},
		{"auth.token_ttl_hours", c.Auth.TokenTTLHours},
	} {
		if f.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", f.name, f.value))
		}
	}
	return errors.Join(errs...)
}
