package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bearbites/bearbites-backend/internal/models"
	"github.com/google/uuid"
)

// Loader performs the bulk read of active alerts, newest first.
type Loader func(ctx context.Context, now time.Time) ([]models.FoodAlert, error)

// Feed is the id-deduplicated working set of active alerts. The bulk
// load and the live insert stream race by nature; the worst case is a
// duplicate event, which Merge suppresses, never data loss.
type Feed struct {
	now func() time.Time

	// 0 keeps the original snapshot semantics: loaded alerts go stale
	// after expiry until the next refetch instead of being pruned.
	pruneInterval time.Duration

	// Delay between bulk-load attempts when the initial read fails.
	loadRetry time.Duration

	mu     sync.Mutex
	alerts []models.FoodAlert
	ids    map[uuid.UUID]struct{}
}

// Option configures a Feed.
type Option func(*Feed)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

// WithPruneInterval enables periodic removal of expired alerts from the
// working set. Zero disables pruning.
func WithPruneInterval(d time.Duration) Option {
	return func(f *Feed) { f.pruneInterval = d }
}

// WithLoadRetryInterval overrides the delay between bulk-load attempts.
func WithLoadRetryInterval(d time.Duration) Option {
	return func(f *Feed) { f.loadRetry = d }
}

func New(opts ...Option) *Feed {
	f := &Feed{
		now:       time.Now,
		ids:       make(map[uuid.UUID]struct{}),
		loadRetry: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load replaces the working set with the bulk-read result. Alerts that
// already arrived over the live stream keep their position; bulk rows
// for the same id are no-ops.
func (f *Feed) Load(alerts []models.FoodAlert) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range alerts {
		if _, dup := f.ids[a.ID]; dup {
			continue
		}
		f.ids[a.ID] = struct{}{}
		f.alerts = append(f.alerts, a)
	}
}

// Merge applies one live insert event. The alert is prepended, ahead of
// every previously loaded entry regardless of created_at, iff it is
// still active at arrival time and not already present.
func (f *Feed) Merge(alert models.FoodAlert) bool {
	if !alert.Active(f.now()) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.ids[alert.ID]; dup {
		return false
	}
	f.ids[alert.ID] = struct{}{}
	f.alerts = append([]models.FoodAlert{alert}, f.alerts...)
	return true
}

// Snapshot returns a copy of the working set in display order.
func (f *Feed) Snapshot() []models.FoodAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.FoodAlert, len(f.alerts))
	copy(out, f.alerts)
	return out
}

// Prune drops expired alerts from the working set and reports how many
// were removed.
func (f *Feed) Prune() int {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.alerts[:0]
	removed := 0
	for _, a := range f.alerts {
		if a.Active(now) {
			kept = append(kept, a)
		} else {
			delete(f.ids, a.ID)
			removed++
		}
	}
	f.alerts = kept
	return removed
}

// Run attaches the feed to the insert stream and performs the bulk
// load. The subscription is registered before the load so no insert
// between the two is missed; overlap resolves as a suppressed
// duplicate. A failed load is retried until it succeeds, since the
// working set is the only source for the public listing. Returns when
// ctx is done, after unsubscribing.
func (f *Feed) Run(ctx context.Context, hub *Hub, load Loader) {
	ch := hub.Subscribe(64)
	defer hub.Unsubscribe(ch)

	for {
		alerts, err := load(ctx, f.now())
		if err == nil {
			f.Load(alerts)
			break
		}
		slog.Error("bulk load of active alerts failed", "error", err, "retry_in", f.loadRetry)
		select {
		case <-time.After(f.loadRetry):
		case <-ctx.Done():
			return
		}
	}

	var pruneC <-chan time.Time
	if f.pruneInterval > 0 {
		ticker := time.NewTicker(f.pruneInterval)
		defer ticker.Stop()
		pruneC = ticker.C
	}

	for {
		select {
		case alert, ok := <-ch:
			if !ok {
				return
			}
			f.Merge(alert)
		case <-pruneC:
			if removed := f.Prune(); removed > 0 {
				slog.Info("pruned expired alerts from feed", "removed", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}
