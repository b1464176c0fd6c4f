package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout   = 30 * time.Second
	DBQueryTimeout        = 15 * time.Second
	DBHealthCheckTimeout  = 5 * time.Second
	DBConnMaxLifetime     = 1 * time.Hour
	DBConnMaxIdleTime     = 30 * time.Minute
	DBMaintenanceInterval = 1 * time.Hour
)

// Authentication Timeouts
const (
	DefaultJWTExpiry        = 15 * time.Minute
	DefaultJWTRefreshExpiry = 7 * 24 * time.Hour // 7 days
	GitHubRequestTimeout    = 10 * time.Second
)

// Storage Timeouts
const (
	StorageOperationTimeout = 30 * time.Second
	StorageListTimeout      = 15 * time.Second
)

// Operation Durations
const (
	CookieMaxAge30Days = 30 * 24 * 60 * 60 // in seconds
	CACHEControlMaxAge = 300               // in seconds
)
