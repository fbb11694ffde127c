package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// Logger is a minimal interface allowing substitution; *zerolog.Logger and *log.Logger both satisfy it.
type Logger interface {
	Printf(format string, v ...any)
}

// NewLogger builds the process logger for the configured level and format.
func NewLogger(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, err
	}

	if out == nil {
		out = os.Stdout
	}

	var logger zerolog.Logger
	switch strings.ToLower(format) {
	case "json":
		logger = zerolog.New(out).With().Timestamp().Logger()
	case "console":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	default:
		return zerolog.Logger{}, errors.New("unsupported log format")
	}

	return logger.Level(lvl), nil
}

// RouteStdLog sends output of the standard library logger through l.
func RouteStdLog(l zerolog.Logger) {
	log.SetFlags(0)
	log.SetPrefix("")
	log.SetOutput(l)
}

// RequestLogger holds request-scoped context to enrich logs.
type RequestLogger struct {
	logger Logger
	method string
	path   string
	job    string
}

// WithRequest creates a request-scoped logger wrapping the provided logger.
func WithRequest(l Logger, r *http.Request, job string) *RequestLogger {
	return &RequestLogger{
		logger: l,
		method: r.Method,
		path:   r.URL.String(),
		job:    job,
	}
}

// ForJob creates a logger for work that is not tied to an HTTP request.
func ForJob(l Logger, job string) *RequestLogger {
	return &RequestLogger{logger: l, job: job}
}

// ContextWithLogger stores the request logger in context for downstream handlers.
func ContextWithLogger(ctx context.Context, rl *RequestLogger) context.Context {
	return context.WithValue(ctx, loggerKey, rl)
}

func (rl *RequestLogger) logf(level zerolog.Level, message string) {
	if zl, ok := rl.logger.(*zerolog.Logger); ok {
		ev := zl.WithLevel(level)
		if rl.method != "" {
			ev = ev.Str("method", rl.method).Str("path", rl.path)
		}
		if rl.job != "" {
			ev = ev.Str("job", rl.job)
		}
		ev.Msg(message)
		return
	}

	prefix := strings.ToUpper(level.String())
	if rl.method != "" {
		prefix = fmt.Sprintf("%s method=%s path=%s", prefix, rl.method, rl.path)
	}
	if rl.job != "" {
		prefix = fmt.Sprintf("%s job=%s", prefix, rl.job)
	}
	rl.logger.Printf("%s: %s", prefix, message)
}

func (rl *RequestLogger) Infof(format string, v ...any) {
	rl.logf(zerolog.InfoLevel, fmt.Sprintf(format, v...))
}

func (rl *RequestLogger) Errorf(format string, v ...any) {
	rl.logf(zerolog.ErrorLevel, fmt.Sprintf(format, v...))
}

// FromContext retrieves a request logger from context when available.
func FromContext(ctx context.Context) *RequestLogger {
	if ctx == nil {
		return nil
	}

	if rl, ok := ctx.Value(loggerKey).(*RequestLogger); ok {
		return rl
	}

	return nil
}

// LoggerOrDefault returns the context logger, or one backed by the standard logger.
func LoggerOrDefault(ctx context.Context) *RequestLogger {
	if rl := FromContext(ctx); rl != nil {
		return rl
	}
	return ForJob(log.Default(), "")
}
