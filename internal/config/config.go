package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the dashboard client configuration
type Config struct {
	ServerURL          string
	Port               string
	LogLevel           string
	DBConnectionString string
	Client             *ClientConfig
	Sync               *SyncConfig
}

// Load reads configuration from the environment, after loading a .env file
// when one is present
func Load() (*Config, error) {
	_ = godotenv.Load()

	client := DefaultClientConfig()
	sync := DefaultSyncConfig()

	client.BaseURL = strings.TrimRight(getEnv("DASHBOARD_URL", client.BaseURL), "/")

	timeout, err := getSeconds("REQUEST_TIMEOUT_SECONDS", client.Timeout)
	if err != nil {
		return nil, err
	}
	client.Timeout = timeout

	if sync.TickInterval, err = getSeconds("TICK_INTERVAL_SECONDS", sync.TickInterval); err != nil {
		return nil, err
	}
	if sync.WorkerPollInterval, err = getSeconds("WORKER_POLL_SECONDS", sync.WorkerPollInterval); err != nil {
		return nil, err
	}
	if sync.ReconnectDelay, err = getSeconds("RECONNECT_DELAY_SECONDS", sync.ReconnectDelay); err != nil {
		return nil, err
	}
	if sync.HeartbeatTimeout, err = getSeconds("HEARTBEAT_TIMEOUT_SECONDS", sync.HeartbeatTimeout); err != nil {
		return nil, err
	}

	return &Config{
		ServerURL:          client.BaseURL,
		Port:               getEnv("PORT", "8081"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		Client:             client,
		Sync:               sync,
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getSeconds(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a whole number of seconds"}
	}
	return time.Duration(seconds) * time.Second, nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
