package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	RabbitMQ      RabbitMQConfig      `yaml:"rabbitmq"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Scheduling    SchedulingConfig    `yaml:"scheduling"`
	Routes        RoutesConfig        `yaml:"routes"`
	Auth          AuthConfig          `yaml:"auth"`
	Log           LogConfig           `yaml:"log"`
	Worker        WorkerConfig        `yaml:"worker"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	SwaggerDir     string   `yaml:"swagger_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", r.User, r.Password, r.Host, r.Port, r.VHost)
}

const (
	TransportKafka    = "kafka"
	TransportRabbitMQ = "rabbitmq"
)

type NotificationsConfig struct {
	Transport string `yaml:"transport"`
	EmailFrom string `yaml:"email_from"`
}

type WorkerConfig struct {
	CompletionSweepMinutes int `yaml:"completion_sweep_minutes"`
}

func (w WorkerConfig) CompletionSweep() time.Duration {
	return time.Duration(w.CompletionSweepMinutes) * time.Minute
}

type SchedulingConfig struct {
	BufferMinutes         int    `yaml:"buffer_minutes"`
	AssignmentLockSeconds int    `yaml:"assignment_lock_seconds"`
	Timezone              string `yaml:"timezone"`
}

// Location is the operator's zone; pickup dates and times are wall clock
// values in it.
func (s SchedulingConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduling timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func (s SchedulingConfig) Buffer() time.Duration {
	return time.Duration(s.BufferMinutes) * time.Minute
}

func (s SchedulingConfig) AssignmentLockTTL() time.Duration {
	return time.Duration(s.AssignmentLockSeconds) * time.Second
}

type RoutesConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

func (r RoutesConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	APIKey    string `yaml:"api_key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and fills defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if _, err := cfg.Scheduling.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SCHEDULING_BUFFER_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes < 0 {
			return fmt.Errorf("invalid SCHEDULING_BUFFER_MINUTES %q", v)
		}
		c.Scheduling.BufferMinutes = minutes
	}
	if v := os.Getenv("SCHEDULING_TIMEZONE"); v != "" {
		c.Scheduling.Timezone = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.Auth.APIKey = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	// zero is a legitimate buffer only when set explicitly through the env
	if c.Scheduling.BufferMinutes == 0 && os.Getenv("SCHEDULING_BUFFER_MINUTES") == "" {
		c.Scheduling.BufferMinutes = 30
	}
	if c.Scheduling.AssignmentLockSeconds == 0 {
		c.Scheduling.AssignmentLockSeconds = 10
	}
	if c.Routes.CacheTTLSeconds == 0 {
		c.Routes.CacheTTLSeconds = 300
	}
	if c.Notifications.Transport == "" {
		c.Notifications.Transport = TransportKafka
	}
	if c.Notifications.EmailFrom == "" {
		c.Notifications.EmailFrom = "noreply@transfers.local"
	}
	if c.Worker.CompletionSweepMinutes == 0 {
		c.Worker.CompletionSweepMinutes = 5
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "booking_topic"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
