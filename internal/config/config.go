package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Maps     MapsConfig
	Kafka    KafkaConfig
	Dispatch DispatchConfig
	Fare     FareConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	InstanceID   string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
	MigrateOnStart bool
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// AuthConfig holds the shared secret used to verify bearer tokens.
type AuthConfig struct {
	JWTSecret string
}

// PaymentConfig holds payment provider credentials.
type PaymentConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
}

// MapsConfig holds geocoding/routing provider configuration.
type MapsConfig struct {
	APIKey string
	Region string
}

// KafkaConfig holds ride event stream configuration.
// An empty broker list disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// DispatchConfig holds candidate search configuration.
type DispatchConfig struct {
	RadiusKm float64
}

// Tariff is the price table for one vehicle class.
type Tariff struct {
	Base      float64
	PerKm     float64
	PerMinute float64
}

// FareConfig holds the tariff per vehicle class.
type FareConfig struct {
	Tariffs map[string]Tariff
}

// defaultTariffs are used for any class without an override.
var defaultTariffs = map[string]Tariff{
	"moto":    {Base: 20, PerKm: 10, PerMinute: 1.5},
	"car":     {Base: 50, PerKm: 26, PerMinute: 5},
	"premium": {Base: 80, PerKm: 35, PerMinute: 6},
	"auto":    {Base: 30, PerKm: 26, PerMinute: 5},
	"taxi":    {Base: 45, PerKm: 24, PerMinute: 4},
}

// Load loads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not load .env file: %v", err)
	}

	hostname, _ := os.Hostname()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			InstanceID:   getEnv("INSTANCE_ID", hostname),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "neoride"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
			MigrateOnStart: getBoolEnv("DB_MIGRATE_ON_START", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "neoride"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Payment: PaymentConfig{
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "INR"),
		},
		Maps: MapsConfig{
			APIKey: getEnv("GOOGLE_MAPS_API", ""),
			Region: getEnv("GOOGLE_MAPS_REGION", "in"),
		},
		Kafka: KafkaConfig{
			Brokers: getListEnv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_RIDE_EVENTS_TOPIC", "ride.events"),
		},
		Dispatch: DispatchConfig{
			RadiusKm: getFloatEnv("DISPATCH_RADIUS_KM", 2),
		},
		Fare: loadFareConfig(),
	}
}

// loadFareConfig applies FARE_<CLASS>_BASE, FARE_<CLASS>_PER_KM and
// FARE_<CLASS>_PER_MIN overrides on top of the default tariffs.
func loadFareConfig() FareConfig {
	tariffs := make(map[string]Tariff, len(defaultTariffs))
	for class, t := range defaultTariffs {
		prefix := "FARE_" + strings.ToUpper(class) + "_"
		tariffs[class] = Tariff{
			Base:      getFloatEnv(prefix+"BASE", t.Base),
			PerKm:     getFloatEnv(prefix+"PER_KM", t.PerKm),
			PerMinute: getFloatEnv(prefix+"PER_MIN", t.PerMinute),
		}
	}
	return FareConfig{Tariffs: tariffs}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
