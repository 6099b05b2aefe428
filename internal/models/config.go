package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Remote   RemoteConfig
	Sync     SyncConfig
}

// DatabaseConfig holds local snapshot store settings
type DatabaseConfig struct {
	Path             string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnMaxIdleTime  time.Duration
	PingTimeout      time.Duration
	MaxSnapshotBytes int64
}

// RemoteConfig holds remote store client settings
type RemoteConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// SyncConfig holds sync orchestrator settings
type SyncConfig struct {
	// OwnerID identifies the family account on the remote store. Empty means
	// guest mode: persist locally and skip the remote entirely.
	OwnerID string

	// ToleranceMs is the window below which two snapshot timestamps count as
	// the same moment for conflict classification.
	ToleranceMs int64

	// DiscardLocalOnRemoteNewer restores the legacy behavior of taking the
	// remote snapshot verbatim when it is clearly newer, instead of merging
	// it with the local one.
	DiscardLocalOnRemoteNewer bool

	// PinHashing selects whether the PIN credential is stored hashed.
	PinHashing bool

	// PolicyFile points at the YAML trimming/badge policy.
	PolicyFile string
}

// DefaultToleranceMs is the default conflict classification window.
const DefaultToleranceMs int64 = 5000
