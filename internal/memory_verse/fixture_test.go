package memoryverse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Wryz/bible-modules/internal/kv"
	"github.com/Wryz/bible-modules/internal/metrics"
	"github.com/Wryz/bible-modules/internal/picker"
	"github.com/Wryz/bible-modules/internal/scripture"
	"github.com/Wryz/bible-modules/internal/scripture/scripturetest"
)

var errStorage = errors.New("disk full")

// flakyStore wraps a memory store and fails reads or writes on demand.
type flakyStore struct {
	*kv.Memory

	mu       sync.Mutex
	failGets bool
	failSets map[string]bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: kv.NewMemory(), failSets: map[string]bool{}}
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	fail := s.failGets
	s.mu.Unlock()
	if fail {
		return "", false, errStorage
	}
	return s.Memory.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	fail := s.failSets[key]
	s.mu.Unlock()
	if fail {
		return errStorage
	}
	return s.Memory.Set(ctx, key, value)
}

func (s *flakyStore) failWrites(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSets[key] = true
}

func (s *flakyStore) failReads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGets = true
}

// recordingBridge remembers every widget update it receives.
type recordingBridge struct {
	mu          sync.Mutex
	err         error
	references  []string
	frequencies []string
	themes      []string
	colors      []*string
}

func (b *recordingBridge) UpdateVerse(_ context.Context, _, reference string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.references = append(b.references, reference)
	return b.err
}

func (b *recordingBridge) UpdateWidgetSettings(_ context.Context, frequency string, _ *int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frequencies = append(b.frequencies, frequency)
	return b.err
}

func (b *recordingBridge) UpdateThemeName(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.themes = append(b.themes, name)
	return b.err
}

func (b *recordingBridge) UpdateThemeColors(_ context.Context, primaryHex *string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.colors = append(b.colors, primaryHex)
	return b.err
}

func (b *recordingBridge) verses() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.references...)
}

type fixture struct {
	svc     *MemoryVerseService
	repo    MemoryVerseRepo
	store   *flakyStore
	bridge  *recordingBridge
	idx     *scripture.Index
	metrics *metrics.Metrics

	mu    sync.Mutex
	clock time.Time
}

var epoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	return newFixtureWithIndex(t, scripturetest.Index(t), configure...)
}

func newFixtureWithIndex(t *testing.T, idx *scripture.Index, configure ...func(*Options)) *fixture {
	t.Helper()

	f := &fixture{
		store:   newFlakyStore(),
		bridge:  &recordingBridge{},
		idx:     idx,
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
		clock:   epoch,
	}
	log := zaptest.NewLogger(t)
	f.repo = NewMemoryVerseRepo(f.store, log)

	opts := Options{
		PopulateCount: 2,
		WidgetTimeout: time.Second,
		Logger:        log,
		Metrics:       f.metrics,
		Now:           f.now,
	}
	for _, c := range configure {
		c(&opts)
	}

	f.svc = NewMemoryVerseService(f.repo, f.idx, picker.New(f.idx, 2025), f.bridge, opts)
	t.Cleanup(f.svc.Wait)
	return f
}

func (f *fixture) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clock
}

func (f *fixture) setClock(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = t
}

func (f *fixture) verse(t *testing.T, ref string) scripture.Verse {
	t.Helper()
	v, ok := f.idx.ParseReference(ref)
	require.True(t, ok, ref)
	return v
}

func (f *fixture) useSettings(t *testing.T, s WidgetSettings) {
	t.Helper()
	require.NoError(t, f.repo.SaveSettings(context.Background(), s))
}

func intPtr(n int) *int { return &n }
