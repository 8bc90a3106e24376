// Package channel hands finished orders to the external communication
// system. The contract is a single opaque text payload and a destination
// identifier; delivery beyond "accepted/not accepted" is not this engine's
// concern.
package channel

import "context"

// Channel accepts an order message for a destination.
type Channel interface {
	Send(ctx context.Context, destination, payload string) error
}
