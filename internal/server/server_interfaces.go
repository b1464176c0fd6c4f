// server_interfaces.go
// Narrow views of server dependencies, defined here so tests can substitute
// them without standing up the real components.

package server

import (
	"context"
)

// DBHealthChecker is the slice of the database pool the server keeps after
// the repositories are built: liveness for the health endpoint and Close on
// shutdown. *database.Pool implements it.
type DBHealthChecker interface {
	// HealthCheck verifies the database connection is working properly
	HealthCheck(ctx context.Context) error

	// Close terminates the database connection
	Close()
}
