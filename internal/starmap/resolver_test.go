package starmap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSource counts lookups and serves from a fixed map.
type fakeSource struct {
	mu      sync.Mutex
	calls   map[string]int
	systems map[string]StarSystem
	err     error
	delay   time.Duration
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls: make(map[string]int),
		systems: map[string]StarSystem{
			"sol":     {Name: "Sol"},
			"fuelum":  {Name: "Fuelum", X: 52, Y: -52.66, Z: 49.81},
			"colonia": {Name: "Colonia", X: -9530.5, Y: -910.28, Z: 19808.12},
		},
	}
}

func (f *fakeSource) Lookup(ctx context.Context, name string) (StarSystem, error) {
	f.mu.Lock()
	f.calls[Normalize(name)]++
	err := f.err
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return StarSystem{}, ctx.Err()
		}
	}
	if err != nil {
		return StarSystem{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	sys, ok := f.systems[Normalize(name)]
	if !ok {
		return StarSystem{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return sys, nil
}

func (f *fakeSource) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[Normalize(name)]
}

func TestResolve_SingleFlight(t *testing.T) {
	src := newFakeSource()
	src.delay = 20 * time.Millisecond
	r := NewResolver(src, nil, time.Minute, time.Second)

	const n = 50
	results := make([]StarSystem, n)
	errs := make([]error, n)

	var start, done sync.WaitGroup
	start.Add(1)
	for i := 0; i < n; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i], errs[i] = r.Resolve(context.Background(), "Sol")
		}(i)
	}
	start.Done()
	done.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i].Name != "Sol" {
			t.Fatalf("caller %d got %q", i, results[i].Name)
		}
	}
	if got := src.callCount("Sol"); got != 1 {
		t.Errorf("source calls = %d, want exactly 1", got)
	}
}

func TestResolve_DistinctKeysDoNotSerialize(t *testing.T) {
	src := newFakeSource()
	src.delay = 50 * time.Millisecond
	r := NewResolver(src, nil, time.Minute, time.Second)

	begin := time.Now()
	var wg sync.WaitGroup
	for _, name := range []string{"Sol", "Fuelum", "Colonia"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if _, err := r.Resolve(context.Background(), name); err != nil {
				t.Errorf("%s: %v", name, err)
			}
		}(name)
	}
	wg.Wait()

	// Three serialized lookups would take >= 150ms.
	if elapsed := time.Since(begin); elapsed > 120*time.Millisecond {
		t.Errorf("resolves serialized: took %v", elapsed)
	}
}

func TestResolve_CacheHitSkipsSource(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, nil, time.Minute, time.Second)

	for i := 0; i < 5; i++ {
		if _, err := r.Resolve(context.Background(), "Fuelum"); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}
	if got := src.callCount("Fuelum"); got != 1 {
		t.Errorf("source calls = %d, want 1", got)
	}
}

func TestResolve_KeyNormalization(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, nil, time.Minute, time.Second)

	for _, name := range []string{"Sol", "  sol  ", "SOL"} {
		sys, err := r.Resolve(context.Background(), name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		if sys.Name != "Sol" {
			t.Errorf("resolve %q = %q", name, sys.Name)
		}
	}
	if got := src.callCount("Sol"); got != 1 {
		t.Errorf("source calls = %d, want 1 across case/space variants", got)
	}
}

func TestResolve_TTLExpiryTriggersOneRefetch(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, nil, 30*time.Millisecond, time.Second)

	if _, err := r.Resolve(context.Background(), "Sol"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Resolve(context.Background(), "Sol"); err != nil {
		t.Fatal(err)
	}
	if got := src.callCount("Sol"); got != 1 {
		t.Fatalf("before expiry: source calls = %d, want 1", got)
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := r.Resolve(context.Background(), "Sol"); err != nil {
		t.Fatal(err)
	}
	if got := src.callCount("Sol"); got != 2 {
		t.Errorf("after expiry: source calls = %d, want 2", got)
	}
}

func TestResolve_InvalidKey(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, nil, time.Minute, time.Second)

	for _, name := range []string{"", "   ", "\t"} {
		_, err := r.Resolve(context.Background(), name)
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("resolve %q: err = %v, want ErrInvalidKey", name, err)
		}
	}
	if got := src.callCount(""); got != 0 {
		t.Errorf("invalid keys must never reach the source, calls = %d", got)
	}
}

func TestResolve_NotFoundIsNotCached(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, nil, time.Minute, time.Second)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), "Nowhere")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("resolve %d: err = %v, want ErrNotFound", i, err)
		}
	}
	// Each access retries; the failure is never memoized.
	if got := src.callCount("Nowhere"); got != 3 {
		t.Errorf("source calls = %d, want 3", got)
	}
}

func TestResolve_FailureDoesNotPoisonFreshEntry(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, nil, time.Minute, time.Second)

	if _, err := r.Resolve(context.Background(), "Sol"); err != nil {
		t.Fatal(err)
	}

	src.mu.Lock()
	src.err = fmt.Errorf("boom: %w", ErrSourceUnavailable)
	src.mu.Unlock()

	sys, err := r.Resolve(context.Background(), "Sol")
	if err != nil {
		t.Fatalf("fresh entry must survive a broken source: %v", err)
	}
	if sys.Name != "Sol" {
		t.Errorf("got %q", sys.Name)
	}
}

func TestResolve_SharedErrorToAllWaiters(t *testing.T) {
	src := newFakeSource()
	src.delay = 20 * time.Millisecond
	src.err = fmt.Errorf("down: %w", ErrSourceUnavailable)
	r := NewResolver(src, nil, time.Minute, time.Second)

	const n = 10
	var failures atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve(context.Background(), "Sol"); errors.Is(err, ErrSourceUnavailable) {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != n {
		t.Errorf("failures = %d, want %d", failures.Load(), n)
	}
	if got := src.callCount("Sol"); got != 1 {
		t.Errorf("source calls = %d, want 1 shared failing call", got)
	}
}

func TestResolve_LookupTimeout(t *testing.T) {
	src := newFakeSource()
	src.delay = 200 * time.Millisecond
	r := NewResolver(src, nil, time.Minute, 20*time.Millisecond)

	_, err := r.Resolve(context.Background(), "Sol")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable after timeout", err)
	}
}

// memStore is an in-memory starmap.Store.
type memStore struct {
	mu   sync.Mutex
	rows map[string]struct {
		sys StarSystem
		at  time.Time
	}
	gets, puts int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]struct {
		sys StarSystem
		at  time.Time
	})}
}

func (m *memStore) GetSystem(key string) (StarSystem, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	row, ok := m.rows[key]
	return row.sys, row.at, ok
}

func (m *memStore) PutSystem(key string, sys StarSystem, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.rows[key] = struct {
		sys StarSystem
		at  time.Time
	}{sys, at}
}

func TestResolve_StoreServesBeforeSource(t *testing.T) {
	src := newFakeSource()
	store := newMemStore()
	store.PutSystem("sol", StarSystem{Name: "Sol"}, time.Now())
	store.puts = 0

	r := NewResolver(src, store, time.Minute, time.Second)
	sys, err := r.Resolve(context.Background(), "Sol")
	if err != nil {
		t.Fatal(err)
	}
	if sys.Name != "Sol" {
		t.Errorf("got %q", sys.Name)
	}
	if got := src.callCount("Sol"); got != 0 {
		t.Errorf("source calls = %d, want 0 when the store is fresh", got)
	}
}

func TestResolve_StaleStoreFallsThroughAndUpdates(t *testing.T) {
	src := newFakeSource()
	store := newMemStore()
	store.PutSystem("sol", StarSystem{Name: "Old Sol"}, time.Now().Add(-time.Hour))
	store.puts = 0

	r := NewResolver(src, store, time.Minute, time.Second)
	sys, err := r.Resolve(context.Background(), "Sol")
	if err != nil {
		t.Fatal(err)
	}
	if sys.Name != "Sol" {
		t.Errorf("got %q, want fresh source value", sys.Name)
	}
	if got := src.callCount("Sol"); got != 1 {
		t.Errorf("source calls = %d, want 1", got)
	}
	if store.puts != 1 {
		t.Errorf("store puts = %d, want refreshed row", store.puts)
	}
}

func TestClearAndInvalidate(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, nil, time.Minute, time.Second)

	if _, err := r.Resolve(context.Background(), "Sol"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Resolve(context.Background(), "Fuelum"); err != nil {
		t.Fatal(err)
	}

	r.Invalidate("sol")
	if _, err := r.Resolve(context.Background(), "Sol"); err != nil {
		t.Fatal(err)
	}
	if got := src.callCount("Sol"); got != 2 {
		t.Errorf("after invalidate: source calls = %d, want 2", got)
	}

	if n := r.Clear(); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
}
