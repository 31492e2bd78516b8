package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hinglish-snaps/internal/logger"
	"hinglish-snaps/metrics"
	"hinglish-snaps/trace"
)

const (
	headerRequestID = "X-Request-Id"
	headerSpanID    = "X-Span-Id"

	maxBodyLog = 1024

	// unmatchedRoute labels requests gin could not route, so bogus paths
	// cannot blow up metric cardinality.
	unmatchedRoute = "unmatched"
)

// sensitiveBodyPaths are never logged with their request body.
var sensitiveBodyPaths = []string{"/api/auth/register", "/api/auth/login"}

// RequestTrace 는 요청마다 Request ID 를 보장하고 응답 헤더로 돌려준다.
// 완료 시점에 상태 코드에 맞는 레벨로 로그를 남기고 HTTP 메트릭을 기록한다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = trace.GenerateID()
		}
		ctx := trace.WithRequestAndSpan(c.Request.Context(), requestID, 0)
		c.Request = c.Request.WithContext(ctx)
		c.Request.Header.Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerSpanID, trace.CurrentSpanID(ctx))

		body := captureBody(c)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      route,
			"query":      c.Request.URL.RawQuery,
			"status":     status,
			"duration":   elapsed.String(),
			"request_id": requestID,
			"span_id":    trace.CurrentSpanID(c.Request.Context()),
		}
		if body != "" {
			fields["body"] = body
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorWithFields("completed request", fields)
		case status >= http.StatusBadRequest:
			logger.WarnWithFields("completed request", fields)
		default:
			logger.InfoWithFields("completed request", fields)
		}
	}
}

// captureBody reads a POST body for logging and restores it for the handler.
func captureBody(c *gin.Context) string {
	req := c.Request
	if req.Method != http.MethodPost || req.Body == nil || req.ContentLength == 0 || isSensitive(req.URL.Path) {
		return ""
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return ""
	}
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) > maxBodyLog {
		raw = raw[:maxBodyLog]
	}
	return string(raw)
}

func isSensitive(path string) bool {
	for _, p := range sensitiveBodyPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
