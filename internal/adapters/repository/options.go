package repository

import (
	"time"

	"github.com/okian/foodrank/pkg/logger"
)

// Option applies a configuration option to the DynamoStore.
type Option func(*DynamoStore)

// WithPageSize bounds a single scan page.
func WithPageSize(n int) Option {
	return func(s *DynamoStore) {
		if n > 0 {
			s.pageSize = int32(n)
		}
	}
}

// WithScanLimit caps the total number of records fetched across pages.
func WithScanLimit(n int) Option {
	return func(s *DynamoStore) {
		if n > 0 {
			s.scanLimit = n
		}
	}
}

// WithTimeout bounds a single fetch attempt.
func WithTimeout(d time.Duration) Option {
	return func(s *DynamoStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRetryBackoff sets the delay before the single bounded retry.
// Zero disables the retry.
func WithRetryBackoff(d time.Duration) Option {
	return func(s *DynamoStore) {
		s.retryBackoff = d
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *DynamoStore) {
		if l != nil {
			s.log = l
		}
	}
}
