package bootstrap

import "context"

type retryPublisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

// retryingProducer gives the booking service a Publish that retries with
// backoff up to attempts times before the failure is logged.
type retryingProducer struct {
	publisher retryPublisher
	attempts  int
}

func (p retryingProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	attempts := p.attempts
	if attempts < 1 {
		attempts = 1
	}
	return p.publisher.PublishWithRetry(ctx, topic, key, value, attempts)
}
