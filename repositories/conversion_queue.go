package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hinglish-snaps/db"
	"hinglish-snaps/models"
)

// maxQueuedDescription bounds the description copied into a queue entry.
const maxQueuedDescription = 500

type ConversionQueueRepository struct {
	col *mongo.Collection
}

func NewConversionQueueRepository(d *mongo.Database) *ConversionQueueRepository {
	return &ConversionQueueRepository{col: d.Collection(db.CollectionConversionQueue)}
}

// Enqueue registers a pending conversion for url. Existing entries are left
// untouched, so enqueueing is idempotent.
func (r *ConversionQueueRepository) Enqueue(ctx context.Context, job *models.ConversionJob) error {
	now := time.Now()
	doc := bson.M{
		"title":       job.Title,
		"description": truncateRunes(job.Description, maxQueuedDescription),
		"status":      models.ConversionPending,
		"retry_count": 0,
		"created_at":  now,
		"updated_at":  now,
	}
	if job.Source != "" {
		doc["source"] = job.Source
	}
	if job.PublishedAt != nil {
		doc["published_at"] = job.PublishedAt
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"url": job.URL},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// FindPending returns pending jobs with retry budget left, oldest first.
func (r *ConversionQueueRepository) FindPending(ctx context.Context, maxRetries, limit int) ([]models.ConversionJob, error) {
	filter := bson.M{
		"status":      models.ConversionPending,
		"retry_count": bson.M{"$lt": maxRetries},
	}
	findOpts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var jobs []models.ConversionJob
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkProcessing claims a pending job. It returns ErrNotFound when another
// worker already moved the job out of pending.
func (r *ConversionQueueRepository) MarkProcessing(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ConversionPending},
		bson.M{"$set": bson.M{"status": models.ConversionProcessing, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkCompleted stores the converted summary for url, creating the entry if
// the conversion happened before anything was queued.
func (r *ConversionQueueRepository) MarkCompleted(ctx context.Context, job *models.ConversionJob) error {
	now := time.Now()
	set := bson.M{
		"status":           models.ConversionCompleted,
		"hinglish_summary": job.HinglishSummary,
		"updated_at":       now,
	}
	onInsert := bson.M{
		"title":       job.Title,
		"description": truncateRunes(job.Description, maxQueuedDescription),
		"retry_count": 0,
		"created_at":  now,
	}
	if job.Source != "" {
		onInsert["source"] = job.Source
	}
	if job.PublishedAt != nil {
		onInsert["published_at"] = job.PublishedAt
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"url": job.URL},
		bson.M{"$set": set, "$setOnInsert": onInsert, "$unset": bson.M{"error": ""}},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}

// MarkRetry puts a failed job back to pending and counts the attempt.
func (r *ConversionQueueRepository) MarkRetry(ctx context.Context, id primitive.ObjectID, cause string) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": models.ConversionPending, "error": cause, "updated_at": time.Now()},
		"$inc": bson.M{"retry_count": 1},
	})
	return err
}

// MarkFailed parks a job that exhausted its retries.
func (r *ConversionQueueRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, cause string) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": models.ConversionFailed, "error": cause, "updated_at": time.Now()},
		"$inc": bson.M{"retry_count": 1},
	})
	return err
}

// FindCompleted returns the completed summaries for the given urls keyed by url.
func (r *ConversionQueueRepository) FindCompleted(ctx context.Context, urls []string) (map[string]string, error) {
	out := make(map[string]string, len(urls))
	if len(urls) == 0 {
		return out, nil
	}
	filter := bson.M{
		"url":    bson.M{"$in": urls},
		"status": models.ConversionCompleted,
	}
	findOpts := options.Find().SetProjection(bson.M{"url": 1, "hinglish_summary": 1})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var job models.ConversionJob
		if err := cur.Decode(&job); err != nil {
			return nil, err
		}
		if job.HinglishSummary != "" {
			out[job.URL] = job.HinglishSummary
		}
	}
	return out, cur.Err()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
