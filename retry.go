package contentsafety

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc/codes"
)

// RetryConfig configures retry behavior for throttled or unavailable responses. Retries are
// off unless MaxRetries is set: by default every Detect call makes exactly one attempt.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (0 means no retry)
	MaxRetries uint64
	// InitialInterval is the initial backoff interval
	InitialInterval time.Duration
	// MaxInterval is the maximum backoff interval between retries.
	MaxInterval time.Duration
	// Multiplier is the backoff multiplier (e.g., 2.0 for exponential backoff)
	Multiplier float64
	// RandomizationFactor adds jitter to prevent thundering herd
	RandomizationFactor float64
}

// DefaultRetryConfig returns the settings used when retries are turned on with only a retry
// count, for example by the CLI's --retries flag.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     500 * time.Millisecond,
		MaxInterval:         30 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.65,
	}
}

// isRetriableError checks if the error is retriable (throttled or unavailable)
func isRetriableError(err error) bool {
	var failure *DetectionFailure
	if !errors.As(err, &failure) {
		return false
	}
	code := failure.CanonicalCode()
	return code == codes.ResourceExhausted || code == codes.Unavailable
}

// createBackoff creates a configured exponential backoff
func createBackoff(config RetryConfig) backoff.BackOff {
	if config.MaxRetries == 0 {
		return &backoff.StopBackOff{}
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = config.InitialInterval
	expBackoff.MaxInterval = config.MaxInterval
	expBackoff.Multiplier = config.Multiplier
	expBackoff.RandomizationFactor = config.RandomizationFactor
	expBackoff.MaxElapsedTime = 0 // retries are bounded by WithMaxRetries

	return backoff.WithMaxRetries(expBackoff, config.MaxRetries)
}
