package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hinglish-snaps/config"
	"hinglish-snaps/internal/logger"
	"hinglish-snaps/metrics"
	"hinglish-snaps/models"
	"hinglish-snaps/newsapi"
	"hinglish-snaps/repositories"
	"hinglish-snaps/summarizer"
)

// CategoryReport counts what happened to the candidates of one category.
type CategoryReport struct {
	Saved    int
	Fallback int
	Skipped  int
	Err      error
}

// IngestReport is keyed by category.
type IngestReport map[string]*CategoryReport

// Ingestor 는 카테고리별 뉴스를 가져와 요약 후 저장한다.
type Ingestor struct {
	source     newsapi.Source
	summarizer summarizer.Summarizer
	articles   ArticleStore
	cfg        config.NewsSourceConfig
}

func NewIngestor(source newsapi.Source, s summarizer.Summarizer, articles ArticleStore, cfg config.NewsSourceConfig) *Ingestor {
	return &Ingestor{source: source, summarizer: s, articles: articles, cfg: cfg}
}

// Run ingests every configured category. A failing category is logged and
// does not stop the others.
func (in *Ingestor) Run(ctx context.Context) IngestReport {
	report := IngestReport{}
	for _, category := range in.cfg.Categories {
		if ctx.Err() != nil {
			break
		}
		cr := in.ingestCategory(ctx, category)
		report[category] = cr
		fields := logger.Fields{
			"category": category,
			"saved":    cr.Saved,
			"fallback": cr.Fallback,
			"skipped":  cr.Skipped,
		}
		if cr.Err != nil {
			fields["error"] = cr.Err.Error()
			logger.ErrorWithFields("ingest category failed", fields)
			continue
		}
		logger.InfoWithFields("ingest category done", fields)
	}
	return report
}

func (in *Ingestor) ingestCategory(ctx context.Context, category string) *CategoryReport {
	cr := &CategoryReport{}

	res, err := in.source.Search(ctx, newsapi.SearchQuery{
		Query:    fmt.Sprintf(in.cfg.QueryTemplate, category),
		Page:     1,
		PageSize: in.cfg.FetchSize,
		Language: in.cfg.Language,
		SortBy:   "publishedAt",
	})
	if err != nil {
		cr.Err = fmt.Errorf("search %s: %w", category, err)
		return cr
	}

	for _, raw := range res.Articles {
		if ctx.Err() != nil {
			break
		}
		saved, fallback, err := in.ingestArticle(ctx, category, raw)
		if err != nil {
			logger.ErrorWithFields("ingest article failed", logger.Fields{
				"category": category,
				"url":      raw.URL,
				"error":    err.Error(),
			})
			cr.Skipped++
			continue
		}
		if !saved {
			cr.Skipped++
			continue
		}
		cr.Saved++
		if fallback {
			cr.Fallback++
		}
		metrics.ArticlesIngestedTotal.WithLabelValues(category, strconv.FormatBool(fallback)).Inc()
	}
	return cr
}

// ingestArticle stores one candidate. It reports whether a record was written
// and whether it carries a fallback summary.
func (in *Ingestor) ingestArticle(ctx context.Context, category string, raw newsapi.RawArticle) (bool, bool, error) {
	if raw.URL == "" {
		return false, false, nil
	}
	exists, err := in.articles.ExistsByURL(ctx, raw.URL)
	if err != nil {
		return false, false, err
	}
	if exists {
		return false, false, nil
	}
	title := strings.TrimSpace(raw.Title)
	description := strings.TrimSpace(raw.Description)
	if title == "" || description == "" {
		return false, false, nil
	}

	a := &models.Article{
		Title:       title,
		URL:         raw.URL,
		Image:       raw.URLToImage,
		Source:      raw.SourceName,
		PublishedAt: raw.PublishedAt,
		Category:    category,
	}

	summary, err := in.summarizer.Summarize(ctx, title, description)
	if err != nil {
		logger.WarnWithFields("using fallback summary", logger.Fields{
			"category": category,
			"url":      raw.URL,
			"error":    err.Error(),
		})
		a.HinglishSummary = summarizer.Fallback(description)
		a.IsFallback = true
		a.RetryCount = 1
	} else {
		a.HinglishSummary = summary
	}

	if err := in.articles.Insert(ctx, a); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, a.IsFallback, nil
}
