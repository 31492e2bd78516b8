package newsapi

import (
	"context"
	"time"
)

// SearchQuery describes one page of a news search.
type SearchQuery struct {
	Query    string
	Page     int
	PageSize int
	Language string
	SortBy   string
}

// RawArticle is an article as returned by a news source, before summarisation.
type RawArticle struct {
	Title       string
	URL         string
	URLToImage  string
	Description string
	SourceName  string
	PublishedAt *time.Time
}

type SearchResult struct {
	TotalResults int
	Articles     []RawArticle
}

// Source searches an external news provider.
type Source interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
}
