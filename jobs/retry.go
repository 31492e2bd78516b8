package jobs

import (
	"context"

	"hinglish-snaps/config"
	"hinglish-snaps/internal/logger"
	"hinglish-snaps/summarizer"
)

// RetryReport summarises one retry pass.
type RetryReport struct {
	Candidates int
	Converted  int
	Failed     int
}

// Retrier 는 fallback 요약으로 저장된 기사의 변환을 다시 시도한다.
type Retrier struct {
	summarizer summarizer.Summarizer
	articles   ArticleStore
	cfg        config.RetryConfig
}

func NewRetrier(s summarizer.Summarizer, articles ArticleStore, cfg config.RetryConfig) *Retrier {
	return &Retrier{summarizer: s, articles: articles, cfg: cfg}
}

// Run processes one batch of retry candidates, oldest first. Every candidate
// gets a write so its retry counter moves forward even on failure.
func (r *Retrier) Run(ctx context.Context) (RetryReport, error) {
	var rep RetryReport

	candidates, err := r.articles.FindRetryCandidates(ctx, r.cfg.MaxRetries, r.cfg.BatchSize)
	if err != nil {
		return rep, err
	}
	rep.Candidates = len(candidates)

	for _, a := range candidates {
		if ctx.Err() != nil {
			break
		}
		summary, err := r.summarizer.Summarize(ctx, a.Title, a.HinglishSummary)
		if err != nil {
			rep.Failed++
			logger.WarnWithFields("retry conversion failed", logger.Fields{
				"url":         a.URL,
				"retry_count": a.RetryCount + 1,
				"error":       err.Error(),
			})
			if err := r.articles.IncrementRetry(ctx, a.ID); err != nil {
				logger.ErrorWithFields("failed to increment retry count", logger.Fields{"url": a.URL, "error": err.Error()})
			}
			continue
		}
		if err := r.articles.MarkConverted(ctx, a.ID, summary); err != nil {
			rep.Failed++
			logger.ErrorWithFields("failed to store retried summary", logger.Fields{"url": a.URL, "error": err.Error()})
			continue
		}
		rep.Converted++
	}

	if rep.Candidates > 0 {
		logger.InfoWithFields("retry pass done", logger.Fields{
			"candidates": rep.Candidates,
			"converted":  rep.Converted,
			"failed":     rep.Failed,
		})
	}
	return rep, nil
}
