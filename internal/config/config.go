package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client
type Config struct {
	APIBaseURL  string
	Port        string
	Origin      string
	Environment string
	LogLevel    string
	Store       StoreConfig
}

// StoreConfig holds the durable credential store settings
type StoreConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is honoured but optional.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	storeConfig := StoreConfig{
		Driver:   strings.ToLower(getEnv("CREDENTIAL_STORE_DRIVER", DriverSQLite)),
		Path:     getEnv("CREDENTIAL_STORE_PATH", defaultStorePath()),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "medi_client"),
		DSN:      getEnv("CREDENTIAL_STORE_DSN", ""),
	}

	switch storeConfig.Driver {
	case DriverSQLite:
		if storeConfig.DSN == "" {
			storeConfig.DSN = storeConfig.Path
		}
	case DriverMySQL:
		if storeConfig.DSN == "" {
			storeConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				storeConfig.Username, storeConfig.Password, storeConfig.Host, storeConfig.Port, storeConfig.Name)
		}
	default:
		return nil, fmt.Errorf("invalid CREDENTIAL_STORE_DRIVER: %q", storeConfig.Driver)
	}

	apiBaseURL := strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8081/api"), "/")
	if apiBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}

	return &Config{
		APIBaseURL:  apiBaseURL,
		Port:        getEnv("PORT", "3001"),
		Origin:      getEnv("ORIGIN", "http://localhost:3000"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Store:       storeConfig,
	}, nil
}

// IsDev reports whether the client runs in development mode
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "medi-client.db"
	}
	return dir + string(os.PathSeparator) + "medi-client.db"
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
