// Package app wires the fetch, rank and publish stages into one
// run-to-completion pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/foodrank/internal/adapters/publish"
	repository "github.com/okian/foodrank/internal/adapters/repository"
	"github.com/okian/foodrank/internal/domain/model"
	"github.com/okian/foodrank/internal/domain/rank"
	"github.com/okian/foodrank/pkg/logger"
	"github.com/okian/foodrank/pkg/metrics"
)

// Publisher is the artifact sink used by the pipeline.
type Publisher interface {
	Publish(ctx context.Context, snap model.Snapshot) error
}

// Service runs the pipeline: fetch candidates, build the ranked
// snapshot, publish both artifacts. A single Run is strictly
// sequential; concurrent runs across processes are safe because
// publication is an atomic replace.
type Service struct {
	source    repository.Source
	publisher Publisher
	builder   *rank.Builder
	clock     func() time.Time
	log       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the record source.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithPublisher sets the artifact publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithTopK sets the snapshot size bound.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.builder = rank.NewBuilder(rank.WithLimit(k))
		}
	}
}

// WithClock sets the time source, used by tests for deterministic
// generation timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		builder: rank.NewBuilder(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one pipeline invocation. Any stage failure aborts the
// run; nothing is published on a failed fetch.
func (s *Service) Run(ctx context.Context) error {
	if s.source == nil || s.publisher == nil {
		return errors.New("service misconfigured: source and publisher are required")
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	runID := uuid.NewString()
	start := s.clock()
	metrics.RecordRun()

	s.log.Info(ctx, "pipeline run starting", logger.String("run_id", runID))

	records, err := s.source.Fetch(ctx)
	if err != nil {
		kind := ErrorKind(err)
		metrics.RecordRunFailure(kind)
		s.log.Error(ctx, "fetch failed",
			logger.String("run_id", runID),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return fmt.Errorf("fetch: %w", err)
	}
	metrics.SetRecordsFetched(len(records))

	snap := s.builder.Build(records, s.clock())

	if err := s.publisher.Publish(ctx, snap); err != nil {
		kind := ErrorKind(err)
		metrics.RecordRunFailure(kind)
		s.log.Error(ctx, "publish failed",
			logger.String("run_id", runID),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return fmt.Errorf("publish: %w", err)
	}

	elapsed := s.clock().Sub(start)
	metrics.SetSnapshotSize(len(snap.Foods))
	metrics.SetLastSuccess(float64(s.clock().Unix()))
	metrics.ObserveRunDuration(elapsed.Seconds())

	s.log.Info(ctx, "pipeline run complete",
		logger.String("run_id", runID),
		logger.Int("candidates", len(records)),
		logger.Int("published", len(snap.Foods)),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

// ErrorKind maps a pipeline error onto its taxonomy label for metrics
// and exit logging.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, repository.ErrAuth):
		return "auth"
	case errors.Is(err, repository.ErrSchema):
		return "schema"
	case errors.Is(err, repository.ErrConnectivity):
		return "connectivity"
	case errors.Is(err, publish.ErrWrite):
		return "write"
	default:
		return "internal"
	}
}
