// Package history reviews years on behalf of the CLI and servers and keeps a
// record of every successful review.
package history

import (
	"context"

	"go.uber.org/zap"

	"github.com/joescharf/yr/internal/metrics"
	"github.com/joescharf/yr/internal/models"
	"github.com/joescharf/yr/internal/reviewer"
	"github.com/joescharf/yr/internal/store"
)

// Recorder reviews years and records the results in a store.
type Recorder struct {
	reviewer *reviewer.Reviewer
	store    store.Store
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithMetrics counts every review outcome in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// NewRecorder creates a Recorder. A nil store disables recording.
func NewRecorder(rv *reviewer.Reviewer, s store.Store, opts ...Option) *Recorder {
	r := &Recorder{
		reviewer: rv,
		store:    s,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recording reports whether successful reviews are stored.
func (r *Recorder) Recording() bool { return r.store != nil }

// Store returns the underlying store, or nil when recording is disabled.
func (r *Recorder) Store() store.Store { return r.store }

// Review reviews v and records the result. Reviewer failures are returned
// unchanged so callers can classify them with reviewer.KindOf. A failure to
// record is logged and does not fail the review.
func (r *Recorder) Review(ctx context.Context, v any, source models.ReviewSource) (*models.Review, error) {
	res, err := r.reviewer.Evaluate(v)
	if err != nil {
		kind := reviewer.KindOf(err)
		r.metrics.Observe(kind.String())
		r.logger.Debug("review rejected",
			zap.String("source", string(source)),
			zap.String("kind", kind.String()),
			zap.Error(err))
		return nil, err
	}

	outcome := metrics.OutcomeDefault
	if res.Special {
		outcome = metrics.OutcomeSpecial
	}
	r.metrics.Observe(outcome)

	rec := &models.Review{
		Year:    res.Year,
		Result:  res.Text,
		Special: res.Special,
		Source:  source,
	}
	r.logger.Debug("reviewed year",
		zap.Int64("year", rec.Year),
		zap.String("outcome", outcome),
		zap.String("source", string(source)))

	if r.store == nil {
		return rec, nil
	}
	if err := r.store.CreateReview(ctx, rec); err != nil {
		r.logger.Warn("failed to record review", zap.Int64("year", rec.Year), zap.Error(err))
	}
	return rec, nil
}
