package summarizer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hinglish-snaps/config"
)

// Limited applies the per-minute and per-day summary quota in front of
// another Summarizer. Counters live in memory and reset on restart.
type Limited struct {
	next    Summarizer
	limiter *rate.Limiter

	mu         sync.Mutex
	dailyLimit int
	usedToday  int
	dayKey     string
	now        func() time.Time
}

// NewLimited builds a Limited summarizer. Values <= 0 disable that limit.
// The per-minute bucket holds a full minute of tokens so a page of
// conversions can start together while the minute average still holds.
func NewLimited(next Summarizer, q config.SummaryQuotaConfig) *Limited {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if q.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(q.RequestsPerMinute)), q.RequestsPerMinute)
	}
	daily := q.RequestsPerDay
	if daily < 0 {
		daily = 0
	}
	return &Limited{
		next:       next,
		limiter:    limiter,
		dailyLimit: daily,
		now:        time.Now,
	}
}

func (l *Limited) Summarize(ctx context.Context, title, body string) (string, error) {
	if !l.reserveDaily() {
		return "", ErrQuotaExceeded
	}
	if err := l.limiter.Wait(ctx); err != nil {
		l.releaseDaily()
		return "", err
	}
	return l.next.Summarize(ctx, title, body)
}

// reserveDaily counts one call against today's budget. The day rolls over at UTC midnight.
func (l *Limited) reserveDaily() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.now().UTC().Format("2006-01-02")
	if l.dayKey != today {
		l.dayKey = today
		l.usedToday = 0
	}
	if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
		return false
	}
	l.usedToday++
	return true
}

// releaseDaily returns a slot taken by reserveDaily when no upstream call was made.
func (l *Limited) releaseDaily() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dayKey == l.now().UTC().Format("2006-01-02") && l.usedToday > 0 {
		l.usedToday--
	}
}
