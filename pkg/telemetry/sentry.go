// Package telemetry reports server-side failures to Sentry. A Reporter owns its own
// hub; request handlers reach it through the context, never through the sentry
// package globals.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
)

type Reporter struct {
	hub *sentry.Hub
}

// New builds a Reporter from config. An empty DSN yields a disabled reporter whose
// methods are no-ops.
func New(cfg config.SentryConfig, release string) (*Reporter, error) {
	if cfg.DSN == "" {
		return &Reporter{}, nil
	}
	return NewWithOptions(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		TracesSampleRate: cfg.TracesSampleRate,
	})
}

// NewWithOptions builds a Reporter from raw client options.
func NewWithOptions(opts sentry.ClientOptions) (*Reporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("init sentry client: %w", err)
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Enabled reports whether events are forwarded.
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// Middleware binds a per-request hub clone, tagged with the request, to the context.
func (r *Reporter) Middleware(next http.Handler) http.Handler {
	if !r.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hub := r.hub.Clone()
		hub.Scope().SetRequest(req)
		ctx := sentry.SetHubOnContext(req.Context(), hub)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// Capture reports err through the reporter's root hub. Used by workers.
func (r *Reporter) Capture(err error) {
	if !r.Enabled() || err == nil {
		return
	}
	r.hub.CaptureException(err)
}

// Flush waits for buffered events up to timeout.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return r.hub.Flush(timeout)
}

// CaptureError reports err through the hub bound to ctx, if any.
func CaptureError(ctx context.Context, err error) {
	if ctx == nil || err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		return
	}
	hub.CaptureException(err)
}

// SetUser tags the request hub with the authenticated user id.
func SetUser(ctx context.Context, userID string) {
	if ctx == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetUser(sentry.User{ID: userID})
	}
}

// SetTag sets a tag on the request hub's scope, if any.
func SetTag(ctx context.Context, key, value string) {
	if ctx == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetTag(key, value)
	}
}
