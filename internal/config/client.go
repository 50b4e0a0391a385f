package config

import "time"

// ClientConfig holds dashboard server connection settings
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultClientConfig returns the default client configuration
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://localhost:3000",
		Timeout: 30 * time.Second,
	}
}
