package repositories

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hinglish-snaps/db"
	"hinglish-snaps/models"
)

type ArticleRepository struct {
	col *mongo.Collection
}

func NewArticleRepository(d *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: d.Collection(db.CollectionNews)}
}

// ExistsByURL checks if an article with the given url is stored.
func (r *ArticleRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"url": url}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return err == nil, err
}

// FindByURL returns the article stored under url or ErrNotFound.
func (r *ArticleRepository) FindByURL(ctx context.Context, url string) (*models.Article, error) {
	var a models.Article
	if err := r.col.FindOne(ctx, bson.M{"url": url}).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// Insert inserts a new article. A concurrent insert of the same url yields ErrDuplicate.
func (r *ArticleRepository) Insert(ctx context.Context, a *models.Article) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = id
	}
	return nil
}

type ListArticlesOptions struct {
	// Category filters by exact category; empty means all categories.
	Category string
	// Search is matched case-insensitively against title and summary.
	Search string
	Page   int
	Limit  int
}

// List returns one page of articles sorted by published_at desc and the
// total number of matching documents.
func (r *ArticleRepository) List(ctx context.Context, opt ListArticlesOptions) ([]models.Article, int64, error) {
	filter := bson.M{}
	if opt.Category != "" {
		filter["category"] = opt.Category
	}
	if opt.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(opt.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": rx},
			{"hinglish_summary": rx},
		}
	}

	if opt.Page <= 0 {
		opt.Page = 1
	}
	if opt.Limit <= 0 {
		opt.Limit = 6
	}
	skip := int64((opt.Page - 1) * opt.Limit)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().SetSkip(skip).SetLimit(int64(opt.Limit)).SetSort(bson.D{
		{Key: "published_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	results := make([]models.Article, 0, opt.Limit)
	if err := cur.All(ctx, &results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// FindRetryCandidates returns fallback articles that still have retry budget,
// oldest first.
func (r *ArticleRepository) FindRetryCandidates(ctx context.Context, maxRetries, limit int) ([]models.Article, error) {
	filter := bson.M{
		"is_fallback": true,
		"retry_count": bson.M{"$lt": maxRetries},
	}
	findOpts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.Article
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// MarkConverted stores a Hinglish summary produced by the retry job.
// retry_count keeps counting attempts.
func (r *ArticleRepository) MarkConverted(ctx context.Context, id primitive.ObjectID, summary string) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"hinglish_summary": summary,
			"is_fallback":      false,
			"updated_at":       time.Now(),
		},
		"$inc": bson.M{"retry_count": 1},
	})
	return err
}

// IncrementRetry records a failed conversion attempt; is_fallback stays set.
func (r *ArticleRepository) IncrementRetry(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"retry_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}

// SaveSummary stores a summary converted on demand while serving a listing.
func (r *ArticleRepository) SaveSummary(ctx context.Context, id primitive.ObjectID, summary string) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"hinglish_summary": summary,
			"is_fallback":      false,
			"updated_at":       time.Now(),
		},
	})
	return err
}

// UpsertConverted inserts or updates the article keyed by url with a fresh
// Hinglish summary. Category, retry_count and created_at are only written on insert.
func (r *ArticleRepository) UpsertConverted(ctx context.Context, a *models.Article) error {
	now := time.Now()
	category := a.Category
	if category == "" {
		category = models.CategorySearch
	}
	set := bson.M{
		"title":            a.Title,
		"hinglish_summary": a.HinglishSummary,
		"is_fallback":      false,
		"updated_at":       now,
	}
	if a.Image != "" {
		set["image"] = a.Image
	}
	if a.Source != "" {
		set["source"] = a.Source
	}
	if a.PublishedAt != nil {
		set["published_at"] = a.PublishedAt
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"url":         a.URL,
			"category":    category,
			"retry_count": 0,
			"created_at":  now,
		},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"url": a.URL}, update, options.Update().SetUpsert(true))
	return translate(err)
}
