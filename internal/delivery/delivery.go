// Package delivery defines the contract every transport implementation
// (HTTP, workers) exposes to the application entrypoint.
package delivery

import "context"

// Delivery is a running transport. Serve blocks until the transport stops or
// fails; shutdown is driven by the lifecycle hooks registered at construction.
type Delivery interface {
	Serve(ctx context.Context) error
}
