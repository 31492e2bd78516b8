// Package jobs holds the scheduled background work: category ingestion,
// fallback retries and the conversion queue sweep.
package jobs

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hinglish-snaps/models"
)

// ArticleStore is the part of the article repository the jobs need.
type ArticleStore interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, a *models.Article) error
	FindRetryCandidates(ctx context.Context, maxRetries, limit int) ([]models.Article, error)
	MarkConverted(ctx context.Context, id primitive.ObjectID, summary string) error
	IncrementRetry(ctx context.Context, id primitive.ObjectID) error
}

// QueueStore is the part of the conversion queue repository the worker needs.
type QueueStore interface {
	FindPending(ctx context.Context, maxRetries, limit int) ([]models.ConversionJob, error)
	MarkProcessing(ctx context.Context, id primitive.ObjectID) error
	MarkCompleted(ctx context.Context, job *models.ConversionJob) error
	MarkRetry(ctx context.Context, id primitive.ObjectID, cause string) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, cause string) error
}
