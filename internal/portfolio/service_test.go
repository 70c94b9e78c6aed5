package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sipcourse-backend/internal/plans"
	"github.com/angelmondragon/sipcourse-backend/internal/records"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
)

type stubLister struct {
	calls   atomic.Int32
	recs    []records.PlanRecord
	err     error
	release chan struct{}
}

func (s *stubLister) ListPlanRecords(context.Context, uuid.UUID) ([]records.PlanRecord, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	return s.recs, s.err
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (m *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *memoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if raw, ok := m.values[key]; ok {
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, err
		}
	}
	n++
	raw, _ := json.Marshal(n)
	m.values[key] = raw
	return n, nil
}

func (m *memoryCache) CacheKey(parts ...string) string {
	return "sip:cache:" + strings.Join(parts, ":")
}

// gatedLister snapshots its records and then holds the first load until
// release is closed. Later loads return immediately.
type gatedLister struct {
	mu      sync.Mutex
	recs    []records.PlanRecord
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newGatedLister() *gatedLister {
	return &gatedLister{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedLister) setRecords(recs []records.PlanRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recs = recs
}

func (g *gatedLister) ListPlanRecords(ctx context.Context, _ uuid.UUID) ([]records.PlanRecord, error) {
	g.mu.Lock()
	snapshot := g.recs
	g.mu.Unlock()
	if g.calls.Add(1) == 1 {
		close(g.started)
		<-g.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func sampleRecords() []records.PlanRecord {
	start := time.Now().UTC()
	return []records.PlanRecord{
		{Duration: plans.Duration6, DailyAmount: decimal.NewFromInt(5), RewardAmount: decimal.NewFromInt(9), StartDate: start},
		{Duration: plans.Duration12, DailyAmount: decimal.NewFromInt(10), RewardAmount: decimal.NewFromInt(144), StartDate: start},
	}
}

func TestNewServiceRequiresLister(t *testing.T) {
	if _, err := NewService(nil, nil, time.Minute, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestSummaryCachesUntilInvalidated(t *testing.T) {
	lister := &stubLister{recs: sampleRecords()}
	cache := newMemoryCache()
	svc, err := NewService(lister, cache, 5*time.Minute, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	owner := uuid.New()
	ctx := context.Background()

	first, err := svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if first.ROSPercentage != "3.4" || !first.TotalPrincipal.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("unexpected summary %+v", first)
	}
	if _, ok := cache.values["sip:cache:portfolio:summary:"+owner.String()]; !ok {
		t.Fatal("expected summary to be cached")
	}

	second, err := svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !second.TotalProjectedReward.Equal(decimal.NewFromInt(153)) || second.Count != 2 {
		t.Fatalf("unexpected cached summary %+v", second)
	}
	if lister.calls.Load() != 1 {
		t.Fatalf("expected one load, got %d", lister.calls.Load())
	}

	svc.Invalidate(ctx, owner)
	if _, err := svc.Summary(ctx, owner); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if lister.calls.Load() != 2 {
		t.Fatalf("expected reload after invalidation, got %d", lister.calls.Load())
	}
}

func TestSummaryIgnoresLoadStartedBeforeInvalidate(t *testing.T) {
	lister := newGatedLister()
	cache := newMemoryCache()
	svc, _ := NewService(lister, cache, 5*time.Minute, nil)
	owner := uuid.New()
	ctx := context.Background()

	stale := make(chan *Summary, 1)
	go func() {
		summary, err := svc.Summary(ctx, owner)
		if err != nil {
			t.Errorf("summary: %v", err)
		}
		stale <- summary
	}()
	<-lister.started

	lister.setRecords(sampleRecords())
	svc.Invalidate(ctx, owner)

	fresh := make(chan *Summary, 1)
	go func() {
		summary, err := svc.Summary(ctx, owner)
		if err != nil {
			t.Errorf("summary: %v", err)
		}
		fresh <- summary
	}()
	select {
	case summary := <-fresh:
		if summary.Count != 2 {
			t.Fatalf("caller after invalidate joined the old load: %+v", summary)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("caller after invalidate waited on the old load")
	}

	close(lister.release)
	if summary := <-stale; summary.Count != 0 {
		t.Fatalf("old load should see the old snapshot, got %+v", summary)
	}

	got, err := svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Count != 2 || !got.TotalPrincipal.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("stale summary served after invalidate: %+v", got)
	}
}

func TestSummaryLoadSurvivesFirstCallerCancel(t *testing.T) {
	lister := newGatedLister()
	lister.setRecords(sampleRecords())
	svc, _ := NewService(lister, newMemoryCache(), time.Minute, nil)
	owner := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := svc.Summary(ctx, owner)
		first <- err
	}()
	<-lister.started

	second := make(chan *Summary, 1)
	go func() {
		summary, err := svc.Summary(context.Background(), owner)
		if err != nil {
			t.Errorf("second caller: %v", err)
		}
		second <- summary
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(lister.release)

	if err := <-first; err != nil {
		t.Fatalf("first caller: %v", err)
	}
	if summary := <-second; summary == nil || summary.Count != 2 {
		t.Fatalf("unexpected shared summary %+v", summary)
	}
	if got := lister.calls.Load(); got != 1 {
		t.Fatalf("expected one shared load, got %d", got)
	}
}

func TestSummaryRecomputesActiveOnCachedRead(t *testing.T) {
	lister := &stubLister{recs: sampleRecords()}
	svc, _ := NewService(lister, newMemoryCache(), time.Hour, nil)
	impl := svc.(*service)
	start := time.Now().UTC()
	impl.now = func() time.Time { return start }
	owner := uuid.New()
	ctx := context.Background()

	first, err := svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if first.Active != 2 {
		t.Fatalf("expected both plans active, got %d", first.Active)
	}

	impl.now = func() time.Time { return start.AddDate(0, 7, 0) }
	later, err := svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if later.Active != 1 || later.Count != 2 {
		t.Fatalf("expected six month plan matured, got %+v", later)
	}
	if lister.calls.Load() != 1 {
		t.Fatalf("expected cached read, got %d loads", lister.calls.Load())
	}
}

func TestSummaryCoalescesConcurrentMisses(t *testing.T) {
	lister := &stubLister{recs: sampleRecords(), release: make(chan struct{})}
	svc, _ := NewService(lister, nil, time.Minute, nil)
	owner := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Summary(context.Background(), owner); err != nil {
				t.Errorf("summary: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(lister.release)
	wg.Wait()

	if got := lister.calls.Load(); got != 1 {
		t.Fatalf("expected one shared load, got %d", got)
	}
}

func TestSummaryPropagatesErrors(t *testing.T) {
	boom := pkgerrors.New(pkgerrors.CodeDependency, "db down")
	svc, _ := NewService(&stubLister{err: boom}, newMemoryCache(), time.Minute, nil)

	_, err := svc.Summary(context.Background(), uuid.New())
	if !errors.Is(err, boom) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, err := svc.Summary(context.Background(), uuid.Nil); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
