package dto

import "time"

// ArticleDTO는 /api/news 응답의 기사 항목이다.
type ArticleDTO struct {
	ID              string     `json:"_id,omitempty" example:"6710c0ffee0000000000abcd"`
	Title           string     `json:"title" example:"RBI keeps repo rate unchanged"`
	URL             string     `json:"url" example:"https://example.com/rbi"`
	Image           string     `json:"image,omitempty" example:"https://example.com/rbi.jpg"`
	HinglishSummary string     `json:"hinglishSummary" example:"RBI ne repo rate same rakha hai, EMI abhi nahi badhegi."`
	Source          string     `json:"source,omitempty" example:"Mint"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	Category        string     `json:"category" example:"finance"`
	IsFallback      bool       `json:"isFallback" example:"false"`
	RetryCount      int        `json:"retryCount" example:"0"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// NewsPageDTO는 기사 목록의 페이지네이션 봉투다.
type NewsPageDTO struct {
	Articles   []ArticleDTO `json:"articles"`
	Total      int64        `json:"total" example:"42"`
	Page       int          `json:"page" example:"1"`
	TotalPages int          `json:"totalPages" example:"7"`
	HasMore    bool         `json:"hasMore" example:"true"`
}

// ConvertRequestDTO는 POST /api/news/convert 요청 바디다.
type ConvertRequestDTO struct {
	URL         string     `json:"url" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"publishedAt"`
	Category    string     `json:"category"`
}

// ConvertResponseDTO는 단건 변환 결과다.
type ConvertResponseDTO struct {
	HinglishSummary string `json:"hinglishSummary"`
	Cached          bool   `json:"cached"`
}
