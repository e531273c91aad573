package session

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newNamespacedStore(t *testing.T, namespace string) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, namespace), mr
}

func TestReadMissIsRedisNil(t *testing.T) {
	store, _ := newNamespacedStore(t, "")

	_, err := store.Read(context.Background(), "acst:u1:absent")
	if !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store, _ := newNamespacedStore(t, "")
	ctx := context.Background()

	if err := store.Write(ctx, "acst:u1:a", []byte("{}"), time.Minute); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Delete(ctx, "acst:u1:a"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "acst:u1:a"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestNamespaceAppliedAndStripped(t *testing.T) {
	store, mr := newNamespacedStore(t, "app:")
	ctx := context.Background()

	if err := store.Write(ctx, "acst:u1:a", []byte("{}"), time.Minute); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Write(ctx, "acst:u1:b", []byte("{}"), time.Minute); err != nil {
		t.Fatalf("write: %v", err)
	}

	// physical keys carry the namespace
	if !mr.Exists("app:acst:u1:a") {
		t.Fatal("expected namespaced physical key")
	}

	// scan results do not
	tokens, err := store.ScanTokens(ctx, "acst:u1:*")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	sort.Strings(tokens)
	if len(tokens) != 2 || tokens[0] != "acst:u1:a" || tokens[1] != "acst:u1:b" {
		t.Fatalf("expected logical tokens, got %v", tokens)
	}

	// logical reads resolve through the namespace
	if _, err := store.Read(ctx, "acst:u1:a"); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestScanTokensEmpty(t *testing.T) {
	store, _ := newNamespacedStore(t, "")

	tokens, err := store.ScanTokens(context.Background(), "acst:nobody:*")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %v", tokens)
	}
}

func TestStoreFailuresWrapSentinel(t *testing.T) {
	store, mr := newNamespacedStore(t, "")
	ctx := context.Background()
	mr.Close()

	if err := store.Write(ctx, "acst:u1:a", []byte("{}"), time.Minute); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("write: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.Read(ctx, "acst:u1:a"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("read: expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Refresh(ctx, "acst:u1:a", time.Minute); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("refresh: expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Delete(ctx, "acst:u1:a"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("delete: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.ScanTokens(ctx, "*"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("scan: expected ErrStoreUnavailable, got %v", err)
	}
}
