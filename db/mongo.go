package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"hinglish-snaps/config"
	"hinglish-snaps/internal/logger"
)

const (
	CollectionNews            = "news"
	CollectionConversionQueue = "conversionqueues"
	CollectionUsers           = "users"
)

// codeIndexOptionsConflict is returned when an index with the same keys but
// different options (e.g. another expireAfterSeconds) already exists.
const codeIndexOptionsConflict = 85

// Connect opens a client, verifies it with a ping and ensures indexes.
// The caller owns the returned client and must Disconnect it.
func Connect(ctx context.Context, cfg config.MongoConfig, retention config.RetentionConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	cl, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cl.Ping(ctx, readpref.Primary()); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	database := cl.Database(cfg.Database)

	if err := EnsureIndexes(ctx, database, retention); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, nil, err
	}
	logger.InfoWithFields("MongoDB connected and indexes ensured", logger.Fields{"database": cfg.Database})
	return cl, database, nil
}

// EnsureIndexes creates the unique and TTL indexes every collection relies on.
func EnsureIndexes(ctx context.Context, d *mongo.Database, retention config.RetentionConfig) error {
	// news: unique url, category + published_at for listing, TTL on created_at
	{
		col := d.Collection(CollectionNews)
		if _, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "url", Value: 1}},
				Options: options.Index().SetName("uniq_url").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "published_at", Value: -1}},
				Options: options.Index().SetName("idx_category_published_at"),
			},
			{
				Keys:    bson.D{{Key: "is_fallback", Value: 1}, {Key: "retry_count", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("idx_retry_candidates"),
			},
		}); err != nil {
			return fmt.Errorf("news indexes: %w", err)
		}
		if err := ensureTTL(ctx, d, CollectionNews, retention.Articles); err != nil {
			return err
		}
	}

	// conversionqueues: unique url, pending sweep, TTL on created_at
	{
		col := d.Collection(CollectionConversionQueue)
		if _, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "url", Value: 1}},
				Options: options.Index().SetName("uniq_url").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("idx_status_created_at"),
			},
		}); err != nil {
			return fmt.Errorf("conversion queue indexes: %w", err)
		}
		if err := ensureTTL(ctx, d, CollectionConversionQueue, retention.ConversionQueue); err != nil {
			return err
		}
	}

	// users: unique email
	{
		if _, err := d.Collection(CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		}); err != nil {
			return fmt.Errorf("users indexes: %w", err)
		}
	}
	return nil
}

// ensureTTL creates the created_at TTL index, or updates its expiry in place
// when the retention window changed since the index was first created.
func ensureTTL(ctx context.Context, d *mongo.Database, collection string, ttl time.Duration) error {
	seconds := int32(ttl / time.Second)
	_, err := d.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetName("ttl_created_at").SetExpireAfterSeconds(seconds),
	})
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Code != codeIndexOptionsConflict {
		return fmt.Errorf("%s ttl index: %w", collection, err)
	}

	res := d.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: collection},
		{Key: "index", Value: bson.D{
			{Key: "name", Value: "ttl_created_at"},
			{Key: "expireAfterSeconds", Value: seconds},
		}},
	})
	if err := res.Err(); err != nil {
		return fmt.Errorf("%s ttl collMod: %w", collection, err)
	}
	logger.InfoWithFields("ttl index updated", logger.Fields{"collection": collection, "expire_after_seconds": seconds})
	return nil
}

// Ping is used by the health endpoint.
func Ping(ctx context.Context, cl *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return cl.Ping(ctx, readpref.Primary())
}
