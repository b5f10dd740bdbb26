package messaging

import "context"

// PublisherInterface sends membership events. The organization workflows treat
// publish errors as non-fatal.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
	Close() error
}

// PublisherFunc adapts a function to PublisherInterface; Close is a no-op
type PublisherFunc func(ctx context.Context, routingKey string, eventData interface{}) error

func (f PublisherFunc) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	return f(ctx, routingKey, eventData)
}

func (PublisherFunc) Close() error { return nil }

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = PublisherFunc(nil)
)
