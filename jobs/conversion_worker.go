package jobs

import (
	"context"
	"errors"

	"hinglish-snaps/config"
	"hinglish-snaps/internal/logger"
	"hinglish-snaps/repositories"
	"hinglish-snaps/summarizer"
)

// QueueReport summarises one queue sweep.
type QueueReport struct {
	Processed int
	Completed int
	Retried   int
	Failed    int
}

// QueueWorker 는 conversion queue 의 pending 항목을 변환한다.
type QueueWorker struct {
	summarizer summarizer.Summarizer
	queue      QueueStore
	cfg        config.ConversionQueueConfig
}

func NewQueueWorker(s summarizer.Summarizer, queue QueueStore, cfg config.ConversionQueueConfig) *QueueWorker {
	return &QueueWorker{summarizer: s, queue: queue, cfg: cfg}
}

func (w *QueueWorker) Run(ctx context.Context) (QueueReport, error) {
	var rep QueueReport

	jobs, err := w.queue.FindPending(ctx, w.cfg.MaxRetries, w.cfg.BatchSize)
	if err != nil {
		return rep, err
	}

	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		job := &jobs[i]
		if err := w.queue.MarkProcessing(ctx, job.ID); err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				logger.ErrorWithFields("failed to claim queue item", logger.Fields{"url": job.URL, "error": err.Error()})
			}
			continue
		}
		rep.Processed++

		summary, err := w.summarizer.Summarize(ctx, job.Title, job.Description)
		if err != nil {
			attempts := job.RetryCount + 1
			fields := logger.Fields{"url": job.URL, "retry_count": attempts, "error": err.Error()}
			if attempts >= w.cfg.MaxRetries {
				rep.Failed++
				logger.WarnWithFields("queue conversion failed permanently", fields)
				if err := w.queue.MarkFailed(ctx, job.ID, err.Error()); err != nil {
					logger.ErrorWithFields("failed to mark queue item failed", logger.Fields{"url": job.URL, "error": err.Error()})
				}
				continue
			}
			rep.Retried++
			logger.WarnWithFields("queue conversion failed, will retry", fields)
			if err := w.queue.MarkRetry(ctx, job.ID, err.Error()); err != nil {
				logger.ErrorWithFields("failed to requeue item", logger.Fields{"url": job.URL, "error": err.Error()})
			}
			continue
		}

		job.HinglishSummary = summary
		if err := w.queue.MarkCompleted(ctx, job); err != nil {
			logger.ErrorWithFields("failed to complete queue item", logger.Fields{"url": job.URL, "error": err.Error()})
			continue
		}
		rep.Completed++
	}

	if rep.Processed > 0 {
		logger.InfoWithFields("conversion queue sweep done", logger.Fields{
			"processed": rep.Processed,
			"completed": rep.Completed,
			"retried":   rep.Retried,
			"failed":    rep.Failed,
		})
	}
	return rep, nil
}
