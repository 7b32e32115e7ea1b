package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config holds all console configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// SDA Manager backend configuration
	Manager ManagerConfig `json:"manager"`

	// Local store for manifests and labels
	Store StoreConfig `json:"store"`

	// Operator event publishing
	Events EventsConfig `json:"events"`

	// Session configuration
	Session SessionConfig `json:"session"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// ManagerConfig describes how to reach the SDA Manager and its device agents
type ManagerConfig struct {
	Address   string        `json:"address"` // initial address; operators may change it per session
	Port      int           `json:"port"`
	AgentPort int           `json:"agent_port"`
	Timeout   time.Duration `json:"timeout"`
}

// StoreConfig holds the manifest/label store configuration
type StoreConfig struct {
	Driver   string         `json:"driver"` // memory, mongo or postgres
	MongoURI string         `json:"mongo_uri"`
	DBName   string         `json:"db_name"`
	Postgres PostgresConfig `json:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
	MaxConns int    `json:"max_conns"`
	MinConns int    `json:"min_conns"`
}

// EventsConfig holds MQTT settings for operator action events.
// Publishing is disabled when BrokerHost is empty.
type EventsConfig struct {
	BrokerHost  string `json:"broker_host"`
	BrokerPort  int    `json:"broker_port"`
	BrokerUser  string `json:"broker_user"`
	BrokerPass  string `json:"broker_pass"`
	UseTLS      bool   `json:"use_tls"`
	CACertPath  string `json:"ca_cert_path"`
	TopicPrefix string `json:"topic_prefix"`
	ClientID    string `json:"client_id"`
}

// SessionConfig holds operator session settings
type SessionConfig struct {
	CookieName string        `json:"cookie_name"`
	TTL        time.Duration `json:"ttl"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// Load loads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	// A missing .env file is fine; plain environment variables still apply
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 310*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Manager: ManagerConfig{
			Address:   getEnv("SDA_MANAGER_ADDRESS", ""),
			Port:      getInt("SDA_MANAGER_PORT", 48099),
			AgentPort: getInt("SDA_AGENT_PORT", 48098),
			Timeout:   getDuration("MANAGER_TIMEOUT", 300*time.Second),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
			MongoURI: getEnv("MONGODB_URI", ""),
			DBName:   getEnv("DB_NAME", "sdaconsole"),
			Postgres: PostgresConfig{
				Host:     getEnv("POSTGRES_HOST", "localhost"),
				Port:     getInt("POSTGRES_PORT", 5432),
				User:     getEnv("POSTGRES_USER", ""),
				Password: getEnv("POSTGRES_PASSWORD", ""),
				DBName:   getEnv("POSTGRES_DB", "sdaconsole"),
				SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
				MaxConns: getInt("POSTGRES_MAX_CONNS", 10),
				MinConns: getInt("POSTGRES_MIN_CONNS", 2),
			},
		},
		Events: EventsConfig{
			BrokerHost:  getEnv("EVENTS_BROKER_HOST", ""),
			BrokerPort:  getInt("EVENTS_BROKER_PORT", 1883),
			BrokerUser:  getEnv("EVENTS_BROKER_USER", ""),
			BrokerPass:  getEnv("EVENTS_BROKER_PASS", ""),
			UseTLS:      getBool("EVENTS_BROKER_TLS", false),
			CACertPath:  getEnv("EVENTS_BROKER_CA_FILE", ""),
			TopicPrefix: getEnv("EVENTS_TOPIC_PREFIX", "sdamanager/events"),
			ClientID:    getEnv("EVENTS_CLIENT_ID", "sda-web-console"),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "sdaconsole_session"),
			TTL:        getDuration("SESSION_TTL", 8*time.Hour),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "text"),
			Output:       getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: getBool("LOG_ENABLE_CALLER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5000"}),
			AllowedMethods:   getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept"}),
			ExposedHeaders:   getStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length"}),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getInt("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo store")
		}
	case StorePostgres:
		if c.Store.Postgres.User == "" {
			return fmt.Errorf("POSTGRES_USER is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Manager.Port <= 0 || c.Manager.AgentPort <= 0 {
		return fmt.Errorf("manager and agent ports must be positive")
	}
	if c.Manager.Timeout <= 0 {
		return fmt.Errorf("MANAGER_TIMEOUT must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	p := c.Store.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// GetEventsBrokerURL returns the MQTT broker URL for operator events
func (c *Config) GetEventsBrokerURL() string {
	scheme := "tcp"
	if c.Events.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Events.BrokerHost, c.Events.BrokerPort)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return intValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "1" || value == "true" || value == "TRUE" {
		return true
	}
	if value == "0" || value == "false" || value == "FALSE" {
		return false
	}
	log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
