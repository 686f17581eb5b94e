package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/sweetorder/sweetorder-backend/api/responses"
	"github.com/sweetorder/sweetorder-backend/api/validators"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
)

const (
	idempotencyHeader    = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

// idempotentRoutes lists "METHOD path" pairs whose retries are deduplicated.
var idempotentRoutes = map[string]struct{}{
	http.MethodPost + " /api/v1/orders": {},
}

// IdempotencyStore persists claimed keys and their recorded responses.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
}

// storedResponse is what lives under a claimed key. Status 0 means the first
// request is still being served.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	RequestHash string `json:"request_hash"`
}

func (s storedResponse) pending() bool { return s.Status == 0 }

// Idempotency replays the recorded response when a client retries a covered route
// with the same Idempotency-Key and body. Requests without the header pass through;
// 5xx responses release the key so the retry runs again.
func Idempotency(store IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || ttl <= 0 {
			return next
		}
		g := &idempotencyGuard{store: store, ttl: ttl, logg: logg}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" || !idempotentRoute(r) {
				next.ServeHTTP(w, r)
				return
			}
			if err := g.serve(w, r, next, clientKey); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
			}
		})
	}
}

type idempotencyGuard struct {
	store IdempotencyStore
	ttl   time.Duration
	logg  *logger.Logger
}

func (g *idempotencyGuard) serve(w http.ResponseWriter, r *http.Request, next http.Handler, clientKey string) error {
	if len(clientKey) > maxIdempotencyKeyLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long")
	}
	body, err := validators.BufferBody(w, r)
	if err != nil {
		return err
	}

	ctx := r.Context()
	sum := sha256.Sum256(body)
	hash := hex.EncodeToString(sum[:])
	scope := strings.Join([]string{UserIDFromContext(ctx), r.Method, r.URL.Path}, "|")
	key := g.store.IdempotencyKey(scope, clientKey)

	claimed, err := g.claim(ctx, key, hash)
	if err != nil {
		return err
	}
	if !claimed {
		return g.replay(ctx, w, key, hash)
	}

	rec := &responseCapture{statusRecorder: statusRecorder{ResponseWriter: w}}
	next.ServeHTTP(rec, r)

	// the response is already on the wire; bookkeeping failures are only logged
	bg := context.WithoutCancel(ctx)
	status := rec.statusOrOK()
	if status >= http.StatusInternalServerError {
		g.logFailure(ctx, "idempotency.release_failed", g.store.Del(bg, key))
		return nil
	}
	g.logFailure(ctx, "idempotency.record_failed", g.record(bg, key, storedResponse{
		Status:      status,
		ContentType: rec.Header().Get("Content-Type"),
		Body:        rec.body.Bytes(),
		RequestHash: hash,
	}))
	return nil
}

func (g *idempotencyGuard) claim(ctx context.Context, key, hash string) (bool, error) {
	marker, _ := json.Marshal(storedResponse{RequestHash: hash})
	ok, err := g.store.SetNX(ctx, key, string(marker), g.ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key")
	}
	return ok, nil
}

func (g *idempotencyGuard) record(ctx context.Context, key string, resp storedResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return g.store.Set(ctx, key, string(payload), g.ttl)
}

func (g *idempotencyGuard) replay(ctx context.Context, w http.ResponseWriter, key, hash string) error {
	raw, err := g.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// released by a failed first attempt between our claim and this read
		return pkgerrors.New(pkgerrors.CodeIdempotency, "idempotent request in progress, retry")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	switch {
	case stored.RequestHash != hash:
		return pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body")
	case stored.pending():
		return pkgerrors.New(pkgerrors.CodeIdempotency, "idempotent request in progress, retry")
	}

	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
	return nil
}

func (g *idempotencyGuard) logFailure(ctx context.Context, msg string, err error) {
	if g.logg != nil && err != nil {
		g.logg.Error(ctx, msg, err)
	}
}

// idempotentRoute matches on the chi pattern when routed, else on the raw path.
func idempotentRoute(r *http.Request) bool {
	path := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			path = pattern
		}
	}
	_, ok := idempotentRoutes[r.Method+" "+strings.TrimSuffix(path, "/")]
	return ok
}

// responseCapture tees the body so it can be recorded after the handler returns.
type responseCapture struct {
	statusRecorder
	body bytes.Buffer
}

func (r *responseCapture) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.statusRecorder.Write(b)
}
