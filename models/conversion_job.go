package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversionStatus string

const (
	ConversionPending    ConversionStatus = "pending"
	ConversionProcessing ConversionStatus = "processing"
	ConversionCompleted  ConversionStatus = "completed"
	ConversionFailed     ConversionStatus = "failed"
)

// ConversionJob is a queued Hinglish conversion for an article that is not
// kept in the news collection (external search results).
// Collection: conversionqueues
type ConversionJob struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	URL             string             `bson:"url" json:"url"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Source          string             `bson:"source,omitempty" json:"source,omitempty"`
	PublishedAt     *time.Time         `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	Status          ConversionStatus   `bson:"status" json:"status"`
	HinglishSummary string             `bson:"hinglish_summary,omitempty" json:"hinglishSummary,omitempty"`
	Error           string             `bson:"error,omitempty" json:"error,omitempty"`
	RetryCount      int                `bson:"retry_count" json:"retryCount"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}
