package summarizer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hinglish-snaps/config"
)

type stubSummarizer struct {
	calls atomic.Int32
	out   string
	err   error
}

func (s *stubSummarizer) Summarize(ctx context.Context, title, body string) (string, error) {
	s.calls.Add(1)
	return s.out, s.err
}

func TestClean(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "  RBI ne rates same rakhe hain.  ", want: "RBI ne rates same rakhe hain."},
		{name: "quoted", in: `"Sensex aaj upar gaya boss"`, want: "Sensex aaj upar gaya boss"},
		{name: "markdown bold", in: "**Market thoda down hai**", want: "Market thoda down hai"},
		{name: "code fence", in: "```\nUPI ka record toot gaya\n```", want: "UPI ka record toot gaya"},
		{name: "empty", in: "   ", wantErr: ErrEmptySummary},
		{name: "only quotes", in: `""`, wantErr: ErrEmptySummary},
		{name: "devanagari", in: "बाजार आज ऊपर है", wantErr: ErrNonLatinScript},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Clean(tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFallback(t *testing.T) {
	short := "Short description."
	assert.Equal(t, short, Fallback(short))

	long := strings.Repeat("a", 250)
	got := Fallback(long)
	assert.Equal(t, strings.Repeat("a", 200)+"...", got)

	hindi := strings.Repeat("ह", 201)
	assert.Equal(t, strings.Repeat("ह", 200)+"...", Fallback(hindi))

	assert.Empty(t, Fallback("   "))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(" RBI holds rates ", "Repo rate unchanged at 6.5%")
	assert.Contains(t, p, `"RBI holds rates. Repo rate unchanged at 6.5%"`)
	assert.Contains(t, p, "NO Devanagari")
	assert.Contains(t, p, "under 60 words")

	assert.Contains(t, BuildPrompt("Only title", ""), `"Only title"`)
}

func TestLimitedDailyQuota(t *testing.T) {
	next := &stubSummarizer{out: "ok"}
	l := NewLimited(next, config.SummaryQuotaConfig{RequestsPerDay: 2})
	day := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		out, err := l.Summarize(ctx, "t", "b")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}
	_, err := l.Summarize(ctx, "t", "b")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, int32(2), next.calls.Load())

	day = day.Add(24 * time.Hour)
	_, err = l.Summarize(ctx, "t", "b")
	assert.NoError(t, err)
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestLimitedHonoursContext(t *testing.T) {
	next := &stubSummarizer{out: "ok"}
	l := NewLimited(next, config.SummaryQuotaConfig{RequestsPerMinute: 1})

	_, err := l.Summarize(context.Background(), "t", "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Summarize(ctx, "t", "b")
	assert.Error(t, err)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestLimitedAbandonedWaitKeepsDailyBudget(t *testing.T) {
	next := &stubSummarizer{out: "ok"}
	l := NewLimited(next, config.SummaryQuotaConfig{RequestsPerMinute: 1, RequestsPerDay: 2})

	_, err := l.Summarize(context.Background(), "t", "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Summarize(ctx, "t", "b")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)

	l.mu.Lock()
	used := l.usedToday
	l.mu.Unlock()
	assert.Equal(t, 1, used, "only the call that reached upstream is charged")
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestLimitedAllowsMinuteBurst(t *testing.T) {
	next := &stubSummarizer{out: "ok"}
	l := NewLimited(next, config.SummaryQuotaConfig{RequestsPerMinute: 10, RequestsPerDay: 250})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	for i := 0; i < 6; i++ {
		_, err := l.Summarize(ctx, "t", "b")
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, int32(6), next.calls.Load())
}

func TestInstrumentedPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	s := NewInstrumented(&stubSummarizer{err: boom})
	_, err := s.Summarize(context.Background(), "t", "b")
	assert.ErrorIs(t, err, boom)

	s = NewInstrumented(&stubSummarizer{out: "theek hai"})
	out, err := s.Summarize(context.Background(), "t", "b")
	require.NoError(t, err)
	assert.Equal(t, "theek hai", out)
}

func TestGeminiSummarize(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"\"Sensex aaj 500 points upar gaya, investors khush hain.\""}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL + "/",
	}, srv.Client())
	require.NoError(t, err)

	out, err := g.Summarize(context.Background(), "Sensex rallies", "Sensex closed 500 points higher.")
	require.NoError(t, err)
	assert.Equal(t, "Sensex aaj 500 points upar gaya, investors khush hain.", out)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestGeminiUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), config.GeminiConfig{APIKey: "k", Model: "m", BaseURL: srv.URL + "/"}, srv.Client())
	require.NoError(t, err)

	_, err = g.Summarize(context.Background(), "t", "b")
	assert.Error(t, err)
}
