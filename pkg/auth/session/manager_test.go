package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
	redisclient "github.com/sweetorder/sweetorder-backend/pkg/redis"
)

func newManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	mgr, err := NewManager(redisclient.NewFromRaw(raw), config.JWTConfig{ExpirationMinutes: 15})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr, mr
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr, mr := newManager(t)
	accessID := NewAccessID()

	ok, err := mgr.HasSession(ctx, accessID)
	if err != nil || ok {
		t.Fatalf("expected no session before start, ok=%v err=%v", ok, err)
	}

	if err := mgr.Start(ctx, accessID, uuid.New()); err != nil {
		t.Fatalf("start: %v", err)
	}
	ok, err = mgr.HasSession(ctx, accessID)
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("so:session:access:" + accessID); ttl != 15*time.Minute {
		t.Fatalf("expected session ttl to match token ttl, got %v", ttl)
	}

	if err := mgr.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = mgr.HasSession(ctx, accessID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	mgr, mr := newManager(t)
	accessID := NewAccessID()
	if err := mgr.Start(ctx, accessID, uuid.New()); err != nil {
		t.Fatalf("start: %v", err)
	}
	mr.FastForward(16 * time.Minute)
	ok, err := mgr.HasSession(ctx, accessID)
	if err != nil || ok {
		t.Fatalf("expected expired session, ok=%v err=%v", ok, err)
	}
}

func TestManagerRejectsBlankAccessID(t *testing.T) {
	mgr, _ := newManager(t)
	if err := mgr.Start(context.Background(), " ", uuid.New()); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if _, err := mgr.HasSession(context.Background(), ""); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, config.JWTConfig{ExpirationMinutes: 1}); err == nil {
		t.Fatal("expected error without redis client")
	}
	if _, err := NewManager(&redisclient.Client{}, config.JWTConfig{}); err == nil {
		t.Fatal("expected error without ttl")
	}
}
