package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategorySearch labels articles that came from an ad-hoc search rather than
// a scheduled category fetch.
const CategorySearch = "search"

// Article is a news item with its Hinglish (or fallback English) summary.
// Collection: news
//
//	is_fallback: summary is a truncated English description, not Hinglish
//	retry_count: number of conversion attempts, bounded by the retry job
type Article struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title           string             `bson:"title" json:"title"`
	URL             string             `bson:"url" json:"url"`
	Image           string             `bson:"image,omitempty" json:"image,omitempty"`
	HinglishSummary string             `bson:"hinglish_summary" json:"hinglishSummary"`
	Source          string             `bson:"source,omitempty" json:"source,omitempty"`
	PublishedAt     *time.Time         `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	Category        string             `bson:"category" json:"category"`
	IsFallback      bool               `bson:"is_fallback" json:"isFallback"`
	RetryCount      int                `bson:"retry_count" json:"retryCount"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}
