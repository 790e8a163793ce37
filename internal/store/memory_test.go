package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

func TestInMemoryTicketStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryTicketStore(time.Minute)

	if err := s.Set(ctx, "t1", "serialized-ticket"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got != "serialized-ticket" {
		t.Errorf("Get() = %q, want %q", got, "serialized-ticket")
	}

	if _, err := s.Get(ctx, "unknown"); !errors.Is(err, core.ErrTicketNotFound) {
		t.Errorf("Get(unknown) = %v, want ErrTicketNotFound", err)
	}
}

func TestInMemoryTicketStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryTicketStore(10 * time.Millisecond)

	if err := s.Set(ctx, "t1", "x"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := s.Get(ctx, "t1"); !errors.Is(err, core.ErrTicketNotFound) {
		t.Errorf("Get() after expiry = %v, want ErrTicketNotFound", err)
	}

	deleted, err := s.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteExpired() = %d, want 1", deleted)
	}
}

func TestInMemoryTicketStore_Replace(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryTicketStore(time.Minute)

	_ = s.Set(ctx, "t1", "old")
	_ = s.Set(ctx, "t1", "new")

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got != "new" {
		t.Errorf("Get() = %q, want the replaced value", got)
	}
}
