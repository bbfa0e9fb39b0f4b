package notifiers

import "context"

// Notifier delivers publish-result events to a downstream sink (HTTP hook,
// SQS, SNS, Pub/Sub).
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt Event) error
}
