package feeder

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"hinglish-snaps/httpclient"
	"hinglish-snaps/newsapi"
)

const DefaultGoogleNewsURL = "https://news.google.com"

var spaceRe = regexp.MustCompile(`\s+`)

// GoogleNews searches the Google News RSS endpoint. The feed has no paging,
// so pages are cut locally from the returned items.
type GoogleNews struct {
	*httpclient.BaseClient
	policy *bluemonday.Policy
}

func NewGoogleNews(httpClient *http.Client, baseURL string) *GoogleNews {
	if baseURL == "" {
		baseURL = DefaultGoogleNewsURL
	}
	return &GoogleNews{
		BaseClient: httpclient.NewBaseClientWithClient(httpClient, baseURL),
		policy:     bluemonday.StrictPolicy(),
	}
}

func (g *GoogleNews) Search(ctx context.Context, q newsapi.SearchQuery) (*newsapi.SearchResult, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("hl", "en-IN")
	params.Set("gl", "IN")
	params.Set("ceid", "IN:en")

	req, err := g.NewRequest(ctx, http.MethodGet, "/rss/search", params, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google news request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google news: unexpected status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("google news parse: %w", err)
	}

	all := make([]newsapi.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		all = append(all, g.toRaw(item))
	}

	result := &newsapi.SearchResult{TotalResults: len(all)}
	result.Articles = page(all, q.Page, q.PageSize)
	return result, nil
}

func (g *GoogleNews) toRaw(item *gofeed.Item) newsapi.RawArticle {
	title, source := splitSource(strings.TrimSpace(item.Title))

	var published *time.Time
	if item.PublishedParsed != nil {
		published = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed
	}

	image := ""
	if item.Image != nil {
		image = item.Image.URL
	}

	return newsapi.RawArticle{
		Title:       title,
		URL:         strings.TrimSpace(item.Link),
		URLToImage:  image,
		Description: g.sanitize(item.Description),
		SourceName:  source,
		PublishedAt: published,
	}
}

// sanitize reduces an HTML fragment to a single line of plain text.
func (g *GoogleNews) sanitize(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(g.policy.Sanitize(s))
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// splitSource separates the " - Publisher" suffix Google News appends to titles.
func splitSource(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

func page(items []newsapi.RawArticle, pageNum, size int) []newsapi.RawArticle {
	if size <= 0 {
		return items
	}
	if pageNum <= 0 {
		pageNum = 1
	}
	start := (pageNum - 1) * size
	if start >= len(items) {
		return []newsapi.RawArticle{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
