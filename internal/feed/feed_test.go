package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bearbites/bearbites-backend/internal/models"
	"github.com/google/uuid"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func alertAt(expires time.Time) models.FoodAlert {
	return models.FoodAlert{
		ID:        uuid.New(),
		ClubName:  "Test Club",
		FoodType:  "Pizza",
		ExpiresAt: expires,
	}
}

func TestLoad_KeepsBulkOrder(t *testing.T) {
	now := time.Now()
	f := New(WithClock(fixedClock(now)))

	first := alertAt(now.Add(2 * time.Hour))
	second := alertAt(now.Add(1 * time.Hour))
	f.Load([]models.FoodAlert{first, second})

	got := f.Snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Error("bulk-load order must be preserved")
	}
}

func TestLoad_ExpiredRowStaysUntilPrune(t *testing.T) {
	now := time.Now()
	f := New(WithClock(fixedClock(now)))

	active := alertAt(now.Add(1 * time.Hour))
	expired := alertAt(now.Add(-1 * time.Hour))
	f.Load([]models.FoodAlert{active, expired})

	// Without pruning the working set is a snapshot: the expired row is
	// stale but present until an explicit Prune or refetch.
	if len(f.Snapshot()) != 2 {
		t.Fatalf("snapshot semantics: expected 2 entries, got %d", len(f.Snapshot()))
	}

	if removed := f.Prune(); removed != 1 {
		t.Fatalf("expected 1 pruned alert, got %d", removed)
	}
	got := f.Snapshot()
	if len(got) != 1 || got[0].ID != active.ID {
		t.Error("only the active alert must survive pruning")
	}
}

func TestMerge_PrependsAheadOfLoadedEntries(t *testing.T) {
	now := time.Now()
	f := New(WithClock(fixedClock(now)))

	loaded := alertAt(now.Add(2 * time.Hour))
	loaded.CreatedAt = now.Add(-10 * time.Minute)
	f.Load([]models.FoodAlert{loaded})

	live := alertAt(now.Add(30 * time.Minute))
	live.CreatedAt = now.Add(-1 * time.Hour) // older created_at than the loaded entry
	if !f.Merge(live) {
		t.Fatal("active live alert must merge")
	}

	got := f.Snapshot()
	if got[0].ID != live.ID {
		t.Error("live arrival must be placed before all previously loaded entries")
	}
}

func TestMerge_DropsAlreadyExpired(t *testing.T) {
	now := time.Now()
	f := New(WithClock(fixedClock(now)))

	if f.Merge(alertAt(now.Add(-1 * time.Minute))) {
		t.Error("alert expired at arrival must not merge")
	}
	if len(f.Snapshot()) != 0 {
		t.Error("working set must stay empty")
	}
}

func TestMerge_DuplicateIsNoOp(t *testing.T) {
	now := time.Now()
	f := New(WithClock(fixedClock(now)))

	a := alertAt(now.Add(1 * time.Hour))
	f.Load([]models.FoodAlert{a})

	if f.Merge(a) {
		t.Error("duplicate id must be a no-op")
	}
	if len(f.Snapshot()) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(f.Snapshot()))
	}
}

func TestRun_RetriesFailedBulkLoad(t *testing.T) {
	now := time.Now()
	f := New(WithClock(fixedClock(now)), WithLoadRetryInterval(time.Millisecond))
	hub := NewHub()

	loaded := alertAt(now.Add(1 * time.Hour))
	var attempts atomic.Int32
	load := func(_ context.Context, _ time.Time) ([]models.FoodAlert, error) {
		if attempts.Add(1) < 3 {
			return nil, context.DeadlineExceeded
		}
		return []models.FoodAlert{loaded}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Run(ctx, hub, load)
	}()

	deadline := time.After(2 * time.Second)
	for len(f.Snapshot()) != 1 {
		select {
		case <-deadline:
			t.Fatalf("working set never populated after %d load attempts", attempts.Load())
		case <-time.After(time.Millisecond):
		}
	}
	if got := f.Snapshot(); got[0].ID != loaded.ID {
		t.Error("retried load must populate the working set")
	}

	cancel()
	<-done
}

func TestRun_MergesLiveEventsAndUnsubscribes(t *testing.T) {
	now := time.Now()
	f := New(WithClock(fixedClock(now)))
	hub := NewHub()

	loaded := alertAt(now.Add(1 * time.Hour))
	load := func(_ context.Context, _ time.Time) ([]models.FoodAlert, error) {
		return []models.FoodAlert{loaded}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Run(ctx, hub, load)
	}()

	// Wait for the subscription to register before publishing.
	deadline := time.After(2 * time.Second)
	for hub.Subscribers() == 0 {
		select {
		case <-deadline:
			t.Fatal("feed never subscribed")
		case <-time.After(time.Millisecond):
		}
	}

	live := alertAt(now.Add(30 * time.Minute))
	hub.Publish(live)

	deadline = time.After(2 * time.Second)
	for len(f.Snapshot()) != 2 {
		select {
		case <-deadline:
			t.Fatal("live event never merged")
		case <-time.After(time.Millisecond):
		}
	}
	if got := f.Snapshot(); got[0].ID != live.ID {
		t.Error("live event must be first in the working set")
	}

	cancel()
	<-done
	if hub.Subscribers() != 0 {
		t.Error("feed must unsubscribe on teardown")
	}
}
