package config

import "time"

// SyncConfig holds the timers of the live state engine
type SyncConfig struct {
	// TickInterval drives the local elapsed-time recomputation
	TickInterval time.Duration
	// WorkerPollInterval is the cadence of every worker status tracker
	WorkerPollInterval time.Duration
	// ReconnectDelay is the fixed wait before reopening the event stream
	ReconnectDelay time.Duration
	// HeartbeatTimeout tears down a silent event stream; zero disables it
	HeartbeatTimeout time.Duration
}

// DefaultSyncConfig returns the default sync configuration
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		TickInterval:       time.Second,
		WorkerPollInterval: 5 * time.Second,
		ReconnectDelay:     5 * time.Second,
		HeartbeatTimeout:   0,
	}
}
