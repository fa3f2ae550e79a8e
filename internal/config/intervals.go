package config

import "time"

// Snapshot freshness windows. Positions move fast; resources and geofences
// barely change.
const (
	// UnitsTTL defines how long the cached unit roster stays fresh
	UnitsTTL = 15 * time.Second

	// ResourcesTTL defines how long the cached resource list stays fresh
	ResourcesTTL = 120 * time.Second

	// GeofencesTTL defines how long a resource's cached geofences stay fresh
	GeofencesTTL = 300 * time.Second
)

// Worker intervals
const (
	// RefreshWorkerInterval defines how often the refresh worker re-warms the caches
	RefreshWorkerInterval = 15 * time.Second

	// PostgresArchiveInterval defines how often to flush dirty snapshots to PostgreSQL
	PostgresArchiveInterval = 60 * time.Second
)
