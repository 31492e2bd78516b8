package summarizer

import (
	"context"
	"errors"
	"time"

	"hinglish-snaps/internal/logger"
	"hinglish-snaps/metrics"
)

// Instrumented records metrics and logs for every call to the wrapped Summarizer.
type Instrumented struct {
	next Summarizer
}

func NewInstrumented(next Summarizer) *Instrumented {
	return &Instrumented{next: next}
}

func (s *Instrumented) Summarize(ctx context.Context, title, body string) (string, error) {
	start := time.Now()
	out, err := s.next.Summarize(ctx, title, body)
	metrics.SummaryDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.SummariesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	case errors.Is(err, ErrQuotaExceeded):
		metrics.SummariesTotal.WithLabelValues(metrics.ResultQuota).Inc()
		logger.WarnWithFields("summary quota exhausted", logger.Fields{"title": title})
	default:
		metrics.SummariesTotal.WithLabelValues(metrics.ResultError).Inc()
		logger.WarnWithFields("summary failed", logger.Fields{"title": title, "error": err.Error()})
	}
	return out, err
}
