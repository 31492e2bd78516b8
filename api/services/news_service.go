package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"hinglish-snaps/api/dto"
	"hinglish-snaps/config"
	"hinglish-snaps/internal/logger"
	"hinglish-snaps/models"
	"hinglish-snaps/newsapi"
	"hinglish-snaps/repositories"
	"hinglish-snaps/summarizer"
)

const categoryAll = "all"

var ErrSummaryUnavailable = errors.New("hinglish conversion failed")

// ArticleStore is the part of the article repository the query API needs.
type ArticleStore interface {
	List(ctx context.Context, opt repositories.ListArticlesOptions) ([]models.Article, int64, error)
	FindByURL(ctx context.Context, url string) (*models.Article, error)
	SaveSummary(ctx context.Context, id primitive.ObjectID, summary string) error
	UpsertConverted(ctx context.Context, a *models.Article) error
}

// ConversionCache is the part of the conversion queue the query API needs.
type ConversionCache interface {
	Enqueue(ctx context.Context, job *models.ConversionJob) error
	MarkCompleted(ctx context.Context, job *models.ConversionJob) error
	FindCompleted(ctx context.Context, urls []string) (map[string]string, error)
}

// NewsService serves article listings and on-demand conversion.
//
// - 검색어가 없으면 저장소 목록을 반환한다.
// - 검색어가 있으면 search_mode 에 따라 저장소 regex 검색 또는 외부 뉴스 검색을 사용한다.
type NewsService struct {
	articles   ArticleStore
	queue      ConversionCache
	source     newsapi.Source
	summarizer summarizer.Summarizer
	cfg        config.QueryConfig

	// converting collapses concurrent Convert calls for the same url.
	converting singleflight.Group
}

func NewNewsService(articles ArticleStore, queue ConversionCache, source newsapi.Source, s summarizer.Summarizer, cfg config.QueryConfig) *NewsService {
	return &NewsService{articles: articles, queue: queue, source: source, summarizer: s, cfg: cfg}
}

type ListNewsInput struct {
	Category string
	Page     int
	Limit    int
	Search   string
	Convert  bool
}

// item tracks where a listed article came from so conversions can be
// written back to the right place.
type item struct {
	article  dto.ArticleDTO
	id       primitive.ObjectID
	body     string
	external bool
}

func (s *NewsService) normalize(in ListNewsInput) ListNewsInput {
	in.Category = strings.TrimSpace(strings.ToLower(in.Category))
	if in.Category == "" {
		in.Category = s.cfg.DefaultCategory
	}
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = s.cfg.DefaultLimit
	}
	if in.Limit < 1 {
		in.Limit = 1
	}
	if in.Limit > s.cfg.MaxLimit {
		in.Limit = s.cfg.MaxLimit
	}
	in.Search = strings.TrimSpace(in.Search)
	return in
}

func (s *NewsService) List(ctx context.Context, raw ListNewsInput) (*dto.NewsPageDTO, error) {
	in := s.normalize(raw)

	var (
		items []*item
		total int64
		err   error
	)
	if in.Search != "" && s.cfg.SearchMode == config.SearchModeExternal && s.source != nil {
		items, total, err = s.searchExternal(ctx, in)
		if err != nil {
			logger.WarnWithFields("external search failed, using local search", logger.Fields{
				"search": in.Search,
				"error":  err.Error(),
			})
			items, total, err = s.listStored(ctx, in)
		}
	} else {
		items, total, err = s.listStored(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	if in.Convert {
		s.convertPage(ctx, items)
	} else {
		s.enqueueExternal(ctx, items)
	}

	out := &dto.NewsPageDTO{
		Articles: make([]dto.ArticleDTO, 0, len(items)),
		Total:    total,
		Page:     in.Page,
	}
	for _, it := range items {
		out.Articles = append(out.Articles, it.article)
	}
	out.TotalPages = int((total + int64(in.Limit) - 1) / int64(in.Limit))
	out.HasMore = in.Page < out.TotalPages
	return out, nil
}

func (s *NewsService) listStored(ctx context.Context, in ListNewsInput) ([]*item, int64, error) {
	opt := repositories.ListArticlesOptions{
		Search: in.Search,
		Page:   in.Page,
		Limit:  in.Limit,
	}
	if in.Category != categoryAll {
		opt.Category = in.Category
	}
	articles, total, err := s.articles.List(ctx, opt)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	items := make([]*item, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		items = append(items, &item{article: mapArticle(a), id: a.ID, body: a.HinglishSummary})
	}
	return items, total, nil
}

func (s *NewsService) searchExternal(ctx context.Context, in ListNewsInput) ([]*item, int64, error) {
	query := in.Search
	if in.Category != categoryAll {
		query = fmt.Sprintf("%s AND %s", in.Search, in.Category)
	}
	res, err := s.source.Search(ctx, newsapi.SearchQuery{
		Query:    query,
		Page:     in.Page,
		PageSize: in.Limit,
		SortBy:   "publishedAt",
	})
	if err != nil {
		return nil, 0, err
	}

	items := make([]*item, 0, len(res.Articles))
	urls := make([]string, 0, len(res.Articles))
	for _, raw := range res.Articles {
		if raw.URL == "" || raw.Title == "" {
			continue
		}
		items = append(items, &item{
			article: dto.ArticleDTO{
				Title:           raw.Title,
				URL:             raw.URL,
				Image:           raw.URLToImage,
				HinglishSummary: summarizer.Fallback(raw.Description),
				Source:          raw.SourceName,
				PublishedAt:     raw.PublishedAt,
				Category:        models.CategorySearch,
				IsFallback:      true,
			},
			body:     raw.Description,
			external: true,
		})
		urls = append(urls, raw.URL)
	}

	completed, err := s.queue.FindCompleted(ctx, urls)
	if err != nil {
		logger.WarnWithFields("failed to load cached conversions", logger.Fields{"error": err.Error()})
	}
	for _, it := range items {
		if summary, ok := completed[it.article.URL]; ok {
			it.article.HinglishSummary = summary
			it.article.IsFallback = false
		}
	}
	return items, int64(res.TotalResults), nil
}

// convertPage converts every fallback item of the page concurrently. A
// failed conversion leaves that item unchanged.
func (s *NewsService) convertPage(ctx context.Context, items []*item) {
	var pending []*item
	for _, it := range items {
		if it.article.IsFallback {
			pending = append(pending, it)
		}
	}
	if len(pending) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(pending))
	for _, it := range pending {
		g.Go(func() error {
			summary, err := s.summarizer.Summarize(gctx, it.article.Title, it.body)
			if err != nil {
				return nil
			}
			it.article.HinglishSummary = summary
			it.article.IsFallback = false
			s.persistConversion(gctx, it, summary)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *NewsService) persistConversion(ctx context.Context, it *item, summary string) {
	if it.external {
		err := s.queue.MarkCompleted(ctx, &models.ConversionJob{
			URL:             it.article.URL,
			Title:           it.article.Title,
			Description:     it.body,
			Source:          it.article.Source,
			PublishedAt:     it.article.PublishedAt,
			HinglishSummary: summary,
		})
		if err != nil {
			logger.ErrorWithFields("failed to cache external conversion", logger.Fields{"url": it.article.URL, "error": err.Error()})
		}
		return
	}
	if err := s.articles.SaveSummary(ctx, it.id, summary); err != nil {
		logger.ErrorWithFields("failed to save converted summary", logger.Fields{"url": it.article.URL, "error": err.Error()})
	}
}

func (s *NewsService) enqueueExternal(ctx context.Context, items []*item) {
	if s.queue == nil {
		return
	}
	for _, it := range items {
		if !it.external || !it.article.IsFallback || it.body == "" {
			continue
		}
		err := s.queue.Enqueue(ctx, &models.ConversionJob{
			URL:         it.article.URL,
			Title:       it.article.Title,
			Description: it.body,
			Source:      it.article.Source,
			PublishedAt: it.article.PublishedAt,
		})
		if err != nil {
			logger.WarnWithFields("failed to enqueue conversion", logger.Fields{"url": it.article.URL, "error": err.Error()})
		}
	}
}

// Convert returns the Hinglish summary for one article, converting and
// storing it when no converted version exists yet.
func (s *NewsService) Convert(ctx context.Context, in dto.ConvertRequestDTO) (*dto.ConvertResponseDTO, error) {
	existing, err := s.articles.FindByURL(ctx, in.URL)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find article: %w", err)
	}
	if existing != nil && !existing.IsFallback && existing.HinglishSummary != "" {
		return &dto.ConvertResponseDTO{HinglishSummary: existing.HinglishSummary, Cached: true}, nil
	}

	v, err, _ := s.converting.Do(in.URL, func() (any, error) {
		return s.convertAndStore(ctx, in, existing)
	})
	if err != nil {
		return nil, err
	}
	return &dto.ConvertResponseDTO{HinglishSummary: v.(string), Cached: false}, nil
}

func (s *NewsService) convertAndStore(ctx context.Context, in dto.ConvertRequestDTO, existing *models.Article) (string, error) {
	body := strings.TrimSpace(in.Description)
	if body == "" && existing != nil {
		body = existing.HinglishSummary
	}
	summary, err := s.summarizer.Summarize(ctx, in.Title, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummaryUnavailable, err)
	}

	a := &models.Article{
		Title:           in.Title,
		URL:             in.URL,
		Image:           in.Image,
		HinglishSummary: summary,
		Source:          in.Source,
		PublishedAt:     in.PublishedAt,
		Category:        in.Category,
	}
	if err := s.articles.UpsertConverted(ctx, a); err != nil {
		return "", fmt.Errorf("store converted article: %w", err)
	}
	return summary, nil
}

func mapArticle(a *models.Article) dto.ArticleDTO {
	d := dto.ArticleDTO{
		Title:           a.Title,
		URL:             a.URL,
		Image:           a.Image,
		HinglishSummary: a.HinglishSummary,
		Source:          a.Source,
		PublishedAt:     a.PublishedAt,
		Category:        a.Category,
		IsFallback:      a.IsFallback,
		RetryCount:      a.RetryCount,
	}
	if !a.ID.IsZero() {
		d.ID = a.ID.Hex()
	}
	if !a.CreatedAt.IsZero() {
		d.CreatedAt = timePtr(a.CreatedAt)
	}
	if !a.UpdatedAt.IsZero() {
		d.UpdatedAt = timePtr(a.UpdatedAt)
	}
	return d
}

func timePtr(t time.Time) *time.Time { return &t }
