package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hinglish-snaps/api/auth"
	"hinglish-snaps/api/services"
	"hinglish-snaps/api/validation"
	"hinglish-snaps/config"
	"hinglish-snaps/models"
	"hinglish-snaps/repositories"
)

type memArticles struct {
	items []models.Article
	byURL map[string]*models.Article
}

func (m *memArticles) List(ctx context.Context, opt repositories.ListArticlesOptions) ([]models.Article, int64, error) {
	var matched []models.Article
	for _, a := range m.items {
		if opt.Category == "" || a.Category == opt.Category {
			matched = append(matched, a)
		}
	}
	start := (opt.Page - 1) * opt.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + opt.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

func (m *memArticles) FindByURL(ctx context.Context, url string) (*models.Article, error) {
	if a, ok := m.byURL[url]; ok {
		return a, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memArticles) SaveSummary(ctx context.Context, id primitive.ObjectID, summary string) error {
	return nil
}

func (m *memArticles) UpsertConverted(ctx context.Context, a *models.Article) error {
	m.byURL[a.URL] = a
	return nil
}

type memQueue struct{}

func (memQueue) Enqueue(ctx context.Context, job *models.ConversionJob) error       { return nil }
func (memQueue) MarkCompleted(ctx context.Context, job *models.ConversionJob) error { return nil }
func (memQueue) FindCompleted(ctx context.Context, urls []string) (map[string]string, error) {
	return map[string]string{}, nil
}

type memUsers struct {
	byEmail map[string]*models.User
}

func (m *memUsers) Create(ctx context.Context, u *models.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repositories.ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

type stubSummarizer struct{ err error }

func (s stubSummarizer) Summarize(ctx context.Context, title, body string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "Hinglish " + title, nil
}

type testEnv struct {
	engine   *gin.Engine
	articles *memArticles
	users    *memUsers
}

func newTestEnv(t *testing.T, sumErr error, ping Pinger) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	articles := &memArticles{byURL: map[string]*models.Article{}}
	users := &memUsers{byEmail: map[string]*models.User{}}
	jm, err := auth.NewJWTManager(config.AuthConfig{JWTSecret: "router-secret"})
	require.NoError(t, err)

	qcfg := config.QueryConfig{DefaultCategory: "finance", DefaultLimit: 6, MaxLimit: 50, SearchMode: config.SearchModeLocal}
	engine := New(Deps{
		News:      services.NewNewsService(articles, memQueue{}, nil, stubSummarizer{err: sumErr}, qcfg),
		Auth:      services.NewAuthService(users, jm, 4),
		Validator: validation.New(),
		Ping:      ping,
	})
	return &testEnv{engine: engine, articles: articles, users: users}
}

func (e *testEnv) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil, func(ctx context.Context) error { return nil })
	rec := env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	env = newTestEnv(t, nil, func(ctx context.Context) error { return errors.New("no primary") })
	rec = env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSwaggerDocument(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(http.MethodGet, "/swagger/doc.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "/api", body["basePath"])
	paths := body["paths"].(map[string]any)
	for _, p := range []string{"/news", "/news/convert", "/auth/register", "/auth/login", "/auth/user"} {
		assert.Contains(t, paths, p)
	}
}

func TestListNews(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.articles.items = []models.Article{{ID: primitive.NewObjectID(), Title: "Sensex", URL: "https://e.com/s", Category: "finance"}}

	rec := env.do(http.MethodGet, "/api/news?category=finance&page=1&limit=6", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["totalPages"])
	assert.Equal(t, false, body["hasMore"])
	articles := body["articles"].([]any)
	require.Len(t, articles, 1)
	assert.Equal(t, "Sensex", articles[0].(map[string]any)["title"])
}

func TestListNewsPagesAndCategories(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	categories := []string{"finance", "finance", "finance", "finance", "technology", "technology", "technology", "business", "business", "business"}
	for i, cat := range categories {
		env.articles.items = append(env.articles.items, models.Article{
			ID:       primitive.NewObjectID(),
			Title:    fmt.Sprintf("story %d", i),
			URL:      fmt.Sprintf("https://e.com/%d", i),
			Category: cat,
		})
	}

	testCases := []struct {
		name      string
		query     string
		wantItems int
		wantTotal int
		wantPages int
		wantMore  bool
		wantFirst string
	}{
		{name: "first page", query: "category=all&page=1&limit=6", wantItems: 6, wantTotal: 10, wantPages: 2, wantMore: true, wantFirst: "story 0"},
		{name: "second page", query: "category=all&page=2&limit=6", wantItems: 4, wantTotal: 10, wantPages: 2, wantMore: false, wantFirst: "story 6"},
		{name: "past the end", query: "category=all&page=3&limit=6", wantItems: 0, wantTotal: 10, wantPages: 2, wantMore: false},
		{name: "single category", query: "category=technology&limit=6", wantItems: 3, wantTotal: 3, wantPages: 1, wantMore: false, wantFirst: "story 4"},
		{name: "default category", query: "", wantItems: 4, wantTotal: 4, wantPages: 1, wantMore: false, wantFirst: "story 0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/api/news?"+tc.query, nil, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			body := decode(t, rec)
			articles := body["articles"].([]any)
			assert.Len(t, articles, tc.wantItems)
			assert.EqualValues(t, tc.wantTotal, body["total"])
			assert.EqualValues(t, tc.wantPages, body["totalPages"])
			assert.Equal(t, tc.wantMore, body["hasMore"])
			if tc.wantFirst != "" {
				assert.Equal(t, tc.wantFirst, articles[0].(map[string]any)["title"])
			}
		})
	}

	seen := map[string]bool{}
	for _, page := range []string{"1", "2"} {
		rec := env.do(http.MethodGet, "/api/news?category=all&limit=6&page="+page, nil, nil)
		for _, a := range decode(t, rec)["articles"].([]any) {
			seen[a.(map[string]any)["category"].(string)] = true
		}
	}
	assert.Equal(t, map[string]bool{"finance": true, "technology": true, "business": true}, seen)
}

func TestConvertNews(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodPost, "/api/news/convert", map[string]string{"title": "no url"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload := map[string]string{"url": "https://e.com/a", "title": "Budget", "description": "Tax cut"}
	rec = env.do(http.MethodPost, "/api/news/convert", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Hinglish Budget", body["hinglishSummary"])
	assert.Equal(t, false, body["cached"])

	rec = env.do(http.MethodPost, "/api/news/convert", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["cached"])
}

func TestConvertNewsUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, errors.New("gemini down"), nil)
	rec := env.do(http.MethodPost, "/api/news/convert", map[string]string{"url": "https://e.com/a", "title": "t"}, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["message"])
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(http.MethodGet, "/api/auth", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to our home page", decode(t, rec)["msg"])

	rec = env.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "as", "email": "bad", "phone": "1", "password": "x"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Len(t, body["errors"], 4)

	reg := map[string]string{"username": " asha ", "email": "asha@example.com", "phone": "9876543210", "password": "secret123"}
	rec = env.do(http.MethodPost, "/api/auth/register", reg, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body = decode(t, rec)
	token := body["token"].(string)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, body["userId"])
	assert.Equal(t, "asha", env.users.byEmail["asha@example.com"].Username)

	rec = env.do(http.MethodPost, "/api/auth/register", reg, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists", decode(t, rec)["message"])

	rec = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "asha@example.com", "password": "wrong-pass"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode(t, rec)["message"])

	rec = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode(t, rec)["message"])

	rec = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "asha@example.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login Successful", decode(t, rec)["message"])

	rec = env.do(http.MethodGet, "/api/auth/user", nil, http.Header{"Authorization": []string{"Bearer " + token}})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "asha@example.com", body["email"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)

	rec = env.do(http.MethodGet, "/api/auth/user", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/auth/user", nil, http.Header{"Authorization": []string{"Bearer not-a-jwt"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	delete(env.users.byEmail, "asha@example.com")
	rec = env.do(http.MethodGet, "/api/auth/user", nil, http.Header{"Authorization": []string{"Bearer " + token}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized. User not found.", decode(t, rec)["message"])
}
