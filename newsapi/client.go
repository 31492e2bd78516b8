package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hinglish-snaps/httpclient"
)

const (
	DefaultBaseURL = "https://newsapi.org"

	removedMarker = "[Removed]"
)

// APIError is returned when NewsAPI answers with status "error" or a non-2xx code.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("newsapi: %s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

type Client struct {
	*httpclient.BaseClient
	apiKey string
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseClient: httpclient.NewBaseClientWithClient(httpClient, baseURL),
		apiKey:     apiKey,
	}
}

type everythingResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search calls GET /v2/everything.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	language := q.Language
	if language == "" {
		language = "en"
	}
	params.Set("language", language)
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}

	req, err := c.NewRequest(ctx, http.MethodGet, "/v2/everything", params, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("newsapi read body: %w", err)
	}

	var out everythingResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Code: "http", Message: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}
	if resp.StatusCode >= 300 || out.Status == "error" {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: out.Code, Message: out.Message}
	}

	result := &SearchResult{
		TotalResults: out.TotalResults,
		Articles:     make([]RawArticle, 0, len(out.Articles)),
	}
	for _, a := range out.Articles {
		title := strings.TrimSpace(a.Title)
		if title == removedMarker {
			title = ""
		}
		description := strings.TrimSpace(a.Description)
		if description == removedMarker {
			description = ""
		}
		result.Articles = append(result.Articles, RawArticle{
			Title:       title,
			URL:         strings.TrimSpace(a.URL),
			URLToImage:  a.URLToImage,
			Description: description,
			SourceName:  a.Source.Name,
			PublishedAt: parseTime(a.PublishedAt),
		})
	}
	return result, nil
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
