// Package delivery defines the contract every transport surface of the
// application fulfills.
package delivery

import "context"

// Delivery is a serving surface started by the application runtime.
// Serve blocks until the surface stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
