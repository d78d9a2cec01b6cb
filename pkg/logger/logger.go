// Package logger configures logrus for the storefront and attaches request
// and trace identifiers taken from a context.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Service string
	Env     string
	Level   string
	Output  io.Writer
}

type ctxKey struct{}

func New(opts Options) *logrus.Entry {
	l := logrus.New()
	l.SetLevel(parseLevel(opts.Level))
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	if env := strings.ToLower(opts.Env); env == "production" || env == "prod" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return l.WithFields(logrus.Fields{
		"service": opts.Service,
		"env":     opts.Env,
	})
}

// Discard is a logger for tests and tools that should stay quiet.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext returns log enriched with the request id and the active span.
func FromContext(ctx context.Context, log logrus.FieldLogger) logrus.FieldLogger {
	fields := logrus.Fields{}
	if id := RequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	if len(fields) == 0 {
		return log
	}
	return log.WithFields(fields)
}

func parseLevel(lvl string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
