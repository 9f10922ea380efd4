package sdk

import "time"

// SupportedSchemaMajor is the schema major version this client understands.
const SupportedSchemaMajor = "1"

type options struct {
	timeout      time.Duration
	maxAttempts  int
	initialDelay time.Duration
}

func defaultOptions() options {
	return options{
		timeout:      3 * time.Minute,
		maxAttempts:  3,
		initialDelay: 500 * time.Millisecond,
	}
}

// Option configures the SDK client.
type Option func(*options)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry sets how often a failed transport call is attempted. Attempts
// below one are treated as one.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(o *options) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		o.maxAttempts = maxAttempts
		o.initialDelay = initialDelay
	}
}
