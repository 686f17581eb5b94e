package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetorder/sweetorder-backend/pkg/env"
)

const redacted = "***"

// secretFragments are matched case-insensitively anywhere in a field key.
var secretFragments = []string{"password", "token", "authorization", "secret", "cookie", "refresh"}

type Options struct {
	ServiceName string
	Level       zerolog.Level
	// WarnStack attaches a stack trace to warn entries. Error entries always carry one.
	WarnStack bool
	Output    io.Writer
}

// Logger wraps zerolog and carries request-scoped fields on the context.
type Logger struct {
	root      zerolog.Logger
	warnStack bool
}

type scopedKey struct{}

func New(opts Options) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(env.Get("SWEETORDER_LOG_FORMAT", "json"), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	return &Logger{
		root:      zerolog.New(out).Level(level).With().Timestamp().Str("service", opts.ServiceName).Logger(),
		warnStack: opts.WarnStack,
	}
}

// ParseLevel returns NoLevel for empty or unknown input so New picks info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return zerolog.NoLevel
	}
	return lvl
}

func (l *Logger) scoped(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if zl, ok := ctx.Value(scopedKey{}).(*zerolog.Logger); ok {
			return zl
		}
	}
	return &l.root
}

func (l *Logger) extend(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	zl := fn(l.scoped(ctx).With()).Logger()
	return context.WithValue(ctx, scopedKey{}, &zl)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Interface(key, redact(key, value))
	})
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context {
		for k, v := range fields {
			c = c.Interface(k, redact(k, v))
		}
		return c
	})
}

func (l *Logger) WithRequestID(ctx context.Context, id string) context.Context {
	return l.WithField(ctx, "request_id", id)
}

func (l *Logger) WithUserID(ctx context.Context, id string) context.Context {
	return l.WithField(ctx, "user_id", id)
}

func (l *Logger) WithActorRole(ctx context.Context, role string) context.Context {
	return l.WithField(ctx, "actor_role", role)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.scoped(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.scoped(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	ev := l.scoped(ctx).Warn()
	if l.warnStack {
		ev = withStack(ev)
	}
	ev.Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	ev := l.scoped(ctx).Error()
	if err != nil {
		ev = ev.Err(err)
	}
	withStack(ev).Msg(msg)
}

func withStack(ev *zerolog.Event) *zerolog.Event {
	return ev.Str("stack", strings.TrimSpace(string(debug.Stack())))
}

// redact masks secret keys and walks nested maps.
func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, frag := range secretFragments {
		if strings.Contains(lower, frag) {
			return redacted
		}
	}
	nested, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(nested))
	for k, v := range nested {
		out[k] = redact(k, v)
	}
	return out
}
