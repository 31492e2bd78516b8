package logger

import (
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger 는 애플리케이션 전역에서 사용하는 최소 로거 인터페이스다.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그를 위한 공통 필드 타입이다.
type Fields map[string]any

// Log 는 전역 로거 인스턴스다. Init 이 호출되지 않아도 info 레벨로 동작한다.
var Log Logger = NewLogger("info")

// Init 은 주어진 레벨로 전역 로거를 다시 만든다. 비어 있으면 info 를 쓴다.
func Init(level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	Log = NewLogger(level)
}

// NewLogger 는 주어진 레벨로 gookit/slog 기반 JSON 로거를 생성한다.
func NewLogger(level string) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// ServiceName is attached to every structured entry as "service".
const ServiceName = "hinglish-snaps"

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func logWithFields(lv level, msg string, fields Fields) {
	m := slog.M{"service": ServiceName}
	for k, v := range fields {
		m[k] = v
	}

	lg, ok := Log.(*slog.Logger)
	if !ok {
		switch lv {
		case levelDebug:
			Log.Debug(msg)
		case levelInfo:
			Log.Info(msg)
		case levelWarn:
			Log.Warn(msg)
		default:
			Log.Error(msg)
		}
		return
	}

	r := lg.WithFields(m)
	switch lv {
	case levelDebug:
		r.Debug(msg)
	case levelInfo:
		r.Info(msg)
	case levelWarn:
		r.Warn(msg)
	default:
		r.Error(msg)
	}
}

func DebugWithFields(msg string, fields Fields) { logWithFields(levelDebug, msg, fields) }
func InfoWithFields(msg string, fields Fields) { logWithFields(levelInfo, msg, fields) }
func WarnWithFields(msg string, fields Fields) { logWithFields(levelWarn, msg, fields) }
func ErrorWithFields(msg string, fields Fields) { logWithFields(levelError, msg, fields) }

// CronLogger 는 robfig/cron 의 Logger 인터페이스를 전역 로거에 연결한다.
type CronLogger struct{}

func (CronLogger) Info(msg string, keysAndValues ...any) {
	DebugWithFields("cron "+msg, pairs(keysAndValues))
}

func (CronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := pairs(keysAndValues)
	fields["error"] = err.Error()
	ErrorWithFields("cron "+msg, fields)
}

func pairs(kv []any) Fields {
	fields := Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			fields[k] = kv[i+1]
		}
	}
	return fields
}
