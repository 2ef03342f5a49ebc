// Package telemetry provides Sentry-based tracing for search operations.
package telemetry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const serviceName = "luppad"

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// Init initializes Sentry with tracing enabled and returns a flush function.
// An empty DSN, or a client that fails to start, yields a no-op flush.
func Init(cfg Config, log *zap.Logger) func() {
	if cfg.DSN == "" {
		return func() {}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate == 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serviceName,
		TracesSampler:    sampler(cfg.TracesSampleRate),
	})
	if err != nil {
		log.Warn("Sentry init failed, continuing without tracing", zap.Error(err))
		return func() {}
	}

	log.Info("Sentry tracing initialized",
		zap.String("environment", cfg.Environment),
		zap.Float64("sample_rate", cfg.TracesSampleRate),
	)
	return func() {
		sentry.Flush(5 * time.Second)
	}
}

// sampler drops health and metrics scrapes and makes child spans follow
// their parent's decision.
func sampler(rate float64) sentry.TracesSampler {
	return func(ctx sentry.SamplingContext) float64 {
		switch ctx.Span.Name {
		case "GET /health", "GET /metrics":
			return 0.0
		}
		var emptySpanID sentry.SpanID
		if ctx.Span.ParentSpanID != emptySpanID {
			if ctx.Span.Sampled.Bool() {
				return 1.0
			}
			return 0.0
		}
		return rate
	}
}

// SpanAttributes contains common attributes for service spans.
type SpanAttributes struct {
	Strategy  string
	Operation string
}

// Span wraps sentry.Span so callers never deal with a nil span.
type Span struct {
	inner *sentry.Span
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError marks the span as errored and captures the exception.
func (s *Span) SetError(err error) {
	if s.inner == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	if hub := sentry.GetHubFromContext(s.inner.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

// StartSpan creates a child span when ctx already carries one, otherwise a
// new transaction.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	if attrs.Strategy != "" {
		span.SetTag("search.strategy", attrs.Strategy)
		// lets transactions be grouped by strategy, not only by route
		if tx := span.GetTransaction(); tx != nil && tx != span {
			tx.SetTag("search.strategy", attrs.Strategy)
		}
	}
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}

	return span.Context(), &Span{inner: span}
}

// CaptureError reports err on the hub bound to ctx, or the global hub.
func CaptureError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}
