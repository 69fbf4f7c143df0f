package ports

import (
	"context"

	"github.com/reglet-dev/runguard/domain/entities"
)

// EventHandler receives one operation notification. A non-nil error means
// the operation must not proceed.
type EventHandler func(ctx context.Context, event entities.Event) error

// EventSource is the interception substrate: it reports operations attempted
// by the monitored program, in order, to a single subscriber.
type EventSource interface {
	// Subscribe registers handler as the sole subscriber. Subscribing again
	// replaces the previous handler.
	Subscribe(handler EventHandler)
}
