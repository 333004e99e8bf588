package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_Basics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	if _, err := store.Get(ctx, "c1", KeyUserProfile); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, "c1", KeyUserProfile, "{}"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, err := store.Get(ctx, "c1", KeyUserProfile)
	if err != nil || val != "{}" {
		t.Fatalf("expected stored value, got %q,%v", val, err)
	}
	if _, err := store.Get(ctx, "c2", KeyUserProfile); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected clients to be isolated, got %v", err)
	}

	if err := store.Delete(ctx, "c1", KeyUserProfile, KeyAuthSession); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "c1", KeyUserProfile); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted key, got %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "c1", KeyAuthSession, "x"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	now = now.Add(30 * time.Second)
	if _, err := store.Get(ctx, "c1", KeyAuthSession); err != nil {
		t.Fatalf("expected value before ttl, got %v", err)
	}
	now = now.Add(31 * time.Second)
	if _, err := store.Get(ctx, "c1", KeyAuthSession); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired value, got %v", err)
	}
}
