package memoryverse

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Wryz/bible-modules/internal/metrics"
	"github.com/Wryz/bible-modules/internal/picker"
	"github.com/Wryz/bible-modules/internal/scripture"
	"github.com/Wryz/bible-modules/internal/widget"
)

const (
	defaultWidgetTimeout   = 5 * time.Second
	defaultPromoteInterval = time.Minute
)

// Options tunes a MemoryVerseService. Zero values pick the defaults.
type Options struct {
	// BookScope lists the books eligible for random picks. Empty means the
	// whole corpus.
	BookScope       []string
	PopulateCount   int
	PromoteInterval time.Duration
	WidgetTimeout   time.Duration

	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// MemoryVerseService drives the verse rotation. It keeps no state of its own
// beyond the store; mu serialises mutations so a reveal is promoted at most
// once per process.
type MemoryVerseService struct {
	repo     MemoryVerseRepo
	index    *scripture.Index
	expander *scripture.Expander
	picker   *picker.Picker
	bridge   widget.Bridge

	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	scope           []string
	populateCount   int
	promoteInterval time.Duration
	widgetTimeout   time.Duration

	mu       sync.Mutex
	notifies sync.WaitGroup
}

func NewMemoryVerseService(repo MemoryVerseRepo, idx *scripture.Index, pick *picker.Picker, bridge widget.Bridge, opts Options) *MemoryVerseService {
	s := &MemoryVerseService{
		repo:            repo,
		index:           idx,
		expander:        scripture.NewExpander(idx),
		picker:          pick,
		bridge:          bridge,
		log:             opts.Logger,
		metrics:         opts.Metrics,
		now:             opts.Now,
		scope:           opts.BookScope,
		populateCount:   opts.PopulateCount,
		promoteInterval: opts.PromoteInterval,
		widgetTimeout:   opts.WidgetTimeout,
	}
	if s.bridge == nil {
		s.bridge = widget.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if len(s.scope) == 0 {
		s.scope = idx.AllBooks()
	}
	if s.populateCount <= 0 {
		s.populateCount = DefaultPopulateCount
	}
	if s.promoteInterval <= 0 {
		s.promoteInterval = defaultPromoteInterval
	}
	if s.widgetTimeout <= 0 {
		s.widgetTimeout = defaultWidgetTimeout
	}
	return s
}

func (s *MemoryVerseService) Index() *scripture.Index {
	return s.index
}

func (s *MemoryVerseService) Expander() *scripture.Expander {
	return s.expander
}

// RefreshInterval is zero when the widget only refreshes on app open.
func (s *MemoryVerseService) RefreshInterval(ctx context.Context) time.Duration {
	return s.repo.Settings(ctx).Interval()
}

// PromoteNextDue turns the earliest due reveal into the current verse. It
// returns nil when nothing is due.
func (s *MemoryVerseService) PromoteNextDue(ctx context.Context) (*DisplayedVerseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promoteNextDue(ctx)
}

func (s *MemoryVerseService) promoteNextDue(ctx context.Context) (*DisplayedVerseRecord, error) {
	now := s.now()
	pending := s.repo.ListPending(ctx)

	var due *ScheduledReveal
	for i := range pending {
		p := &pending[i]
		if p.ScheduledFor.After(now) {
			continue
		}
		if due == nil || p.ScheduledFor.Before(due.ScheduledFor) {
			due = p
		}
	}
	if due == nil {
		return nil, nil
	}

	// Leaving the queue first means a failed write below can lose a reveal
	// but never show it twice.
	if err := s.repo.RemovePending(ctx, due.ID); err != nil {
		return nil, fmt.Errorf("promote %s: %w", due.ID, err)
	}
	s.metrics.SetPending(len(pending) - 1)

	scheduledFor := due.ScheduledFor
	record, err := s.display(ctx, s.expander.Expand(due.Verse), now, &scheduledFor)
	if err != nil {
		return nil, fmt.Errorf("promote %s: %w", due.ID, err)
	}
	s.metrics.Promoted.Inc()
	s.log.Info("promoted scheduled verse",
		zap.String("id", due.ID),
		zap.String("reference", record.Verse.Reference),
		zap.Time("scheduled_for", scheduledFor),
	)
	return record, nil
}

// OnAppForeground keeps the widget in step when the app is opened. In
// onAppOpen mode it always rotates to a fresh verse; otherwise it re-sends
// the current verse, picking one only if none exists yet.
func (s *MemoryVerseService) OnAppForeground(ctx context.Context) (*scripture.Verse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.repo.Settings(ctx)
	current := s.repo.CurrentVerse(ctx)

	switch settings.RefreshFrequency {
	case FrequencyOnAppOpen:
		return s.showFresh(ctx, current)
	case FrequencyHourly, FrequencyDaily, FrequencyCustom:
		if current != nil {
			s.notifyVerse(*current)
			return current, nil
		}
		return s.showFresh(ctx, nil)
	default:
		return nil, fmt.Errorf("%w: unknown refresh frequency %d", ErrInvalidSettings, int(settings.RefreshFrequency))
	}
}

func (s *MemoryVerseService) showFresh(ctx context.Context, current *scripture.Verse) (*scripture.Verse, error) {
	v, ok := s.picker.PickDistinctFrom(current, s.scope, s.expander.Expand)
	if !ok {
		s.log.Warn("no verse in scope, falling back to the schedule")
		record, err := s.promoteNextDue(ctx)
		if record == nil {
			return nil, err
		}
		return &record.Verse, err
	}

	// A failed write still shows the picked verse.
	if _, err := s.display(ctx, v, s.now(), nil); err != nil {
		s.log.Warn("foreground verse not persisted",
			zap.String("reference", v.Reference),
			zap.Error(err),
		)
		s.notifyVerse(v)
	}
	s.metrics.ForegroundSet.Inc()
	return &v, nil
}

// display makes v the current verse, records it, then tells the widget.
func (s *MemoryVerseService) display(ctx context.Context, v scripture.Verse, at time.Time, scheduledFor *time.Time) (*DisplayedVerseRecord, error) {
	if err := s.repo.SetCurrentVerse(ctx, v); err != nil {
		return nil, err
	}
	record := DisplayedVerseRecord{Verse: v, DisplayedAt: at, ScheduledFor: scheduledFor}
	if err := s.repo.AppendDisplayed(ctx, record); err != nil {
		return nil, err
	}
	s.notifyVerse(v)
	return &record, nil
}

// PopulateSchedule queues up to count freshly picked verses at evenly spaced
// slots after now, avoiding recently displayed references and repeats
// within the batch. It returns how many were queued.
func (s *MemoryVerseService) PopulateSchedule(ctx context.Context, count int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.populate(ctx, count)
}

func (s *MemoryVerseService) populate(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		count = s.populateCount
	}

	settings := s.repo.Settings(ctx)
	switch settings.RefreshFrequency {
	case FrequencyOnAppOpen:
		return 0, nil
	case FrequencyHourly, FrequencyDaily, FrequencyCustom:
	default:
		return 0, fmt.Errorf("%w: unknown refresh frequency %d", ErrInvalidSettings, int(settings.RefreshFrequency))
	}
	interval := settings.Interval()

	exclude := make(map[string]struct{}, RecentExclusionWindow+count)
	for _, h := range recentFirst(s.repo.ListDisplayed(ctx), RecentExclusionWindow) {
		exclude[h.Verse.Reference] = struct{}{}
	}

	now := s.now()
	scheduled := 0
	for attempt := 0; attempt < count*PopulateAttemptFactor && scheduled < count; attempt++ {
		v, ok := s.picker.Pick(picker.Options{
			Exclude:     exclude,
			Scope:       s.scope,
			MaxAttempts: picker.DefaultMaxAttempts,
			Expand:      s.expander.Expand,
			Strict:      true,
		})
		if !ok {
			s.log.Debug("no fresh verse left to schedule", zap.Int("scheduled", scheduled))
			break
		}

		reveal := ScheduledReveal{
			ID:           uuid.NewString(),
			Verse:        v,
			ScheduledFor: now.Add(interval * time.Duration(scheduled+1)),
		}
		if err := s.repo.InsertPending(ctx, reveal); err != nil {
			s.metrics.RecordScheduled(metrics.SourcePopulate, scheduled)
			return scheduled, fmt.Errorf("populate schedule: %w", err)
		}
		exclude[v.Reference] = struct{}{}
		scheduled++
	}

	s.metrics.RecordScheduled(metrics.SourcePopulate, scheduled)
	s.syncPendingGauge(ctx)
	s.log.Info("populated schedule",
		zap.Int("requested", count),
		zap.Int("scheduled", scheduled),
		zap.Duration("interval", interval),
	)
	return scheduled, nil
}

// ScheduleExplicit queues a verse the user already chose, as is.
func (s *MemoryVerseService) ScheduleExplicit(ctx context.Context, verse scripture.Verse, when time.Time, collectionID string) (ScheduledReveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reveal := ScheduledReveal{
		ID:           uuid.NewString(),
		Verse:        verse,
		ScheduledFor: when,
		CollectionID: collectionID,
	}
	if err := s.repo.InsertPending(ctx, reveal); err != nil {
		return ScheduledReveal{}, fmt.Errorf("schedule %s: %w", verse.Reference, err)
	}
	s.metrics.RecordScheduled(metrics.SourceExplicit, 1)
	s.syncPendingGauge(ctx)
	return reveal, nil
}

// ScheduleReference resolves a reference and a slot preset, then queues the
// verse.
func (s *MemoryVerseService) ScheduleReference(ctx context.Context, req ScheduleRequest) (ScheduledReveal, error) {
	verse, ok := s.index.ParseReference(req.Reference)
	if !ok {
		return ScheduledReveal{}, fmt.Errorf("%w: reference %q", ErrNotFound, req.Reference)
	}
	when, err := ResolveSlot(req.Preset, req.At, s.now())
	if err != nil {
		return ScheduledReveal{}, err
	}
	return s.ScheduleExplicit(ctx, verse, when, req.CollectionID)
}

// Cancel drops a pending reveal. Unknown ids are ignored.
func (s *MemoryVerseService) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.repo.ListPending(ctx)
	if !slices.ContainsFunc(pending, func(p ScheduledReveal) bool { return p.ID == id }) {
		return nil
	}
	if err := s.repo.RemovePending(ctx, id); err != nil {
		return fmt.Errorf("cancel %s: %w", id, err)
	}
	s.metrics.Cancelled.Inc()
	s.metrics.SetPending(len(pending) - 1)
	return nil
}

// NextDue peeks at the earliest reveal still in the future.
func (s *MemoryVerseService) NextDue(ctx context.Context) *ScheduledReveal {
	now := s.now()
	var next *ScheduledReveal
	for _, p := range s.repo.ListPending(ctx) {
		if !p.ScheduledFor.After(now) {
			continue
		}
		if next == nil || p.ScheduledFor.Before(next.ScheduledFor) {
			next = &p
		}
	}
	return next
}

func (s *MemoryVerseService) Pending(ctx context.Context) []ScheduledReveal {
	return s.repo.ListPending(ctx)
}

// History returns the most recent displays, newest first.
func (s *MemoryVerseService) History(ctx context.Context) []DisplayedVerseRecord {
	return recentFirst(s.repo.ListDisplayed(ctx), HistoryViewLimit)
}

func (s *MemoryVerseService) Current(ctx context.Context) *scripture.Verse {
	return s.repo.CurrentVerse(ctx)
}

func (s *MemoryVerseService) Settings(ctx context.Context) WidgetSettings {
	return s.repo.Settings(ctx)
}

// UpdateSettings saves new widget settings, pushes them to the widget and
// refills the schedule at the new cadence. It returns how many reveals were
// added.
func (s *MemoryVerseService) UpdateSettings(ctx context.Context, settings WidgetSettings) (int, error) {
	if err := settings.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return 0, fmt.Errorf("update settings: %w", err)
	}
	s.notify("settings", func(ctx context.Context) error {
		return s.bridge.UpdateWidgetSettings(ctx, settings.RefreshFrequency.String(), settings.CustomHours)
	})
	return s.populate(ctx, s.populateCount)
}

func (s *MemoryVerseService) Appearance(ctx context.Context) Appearance {
	return s.repo.Appearance(ctx)
}

func (s *MemoryVerseService) UpdateAppearance(ctx context.Context, appearance Appearance) error {
	if strings.TrimSpace(appearance.ThemeName) == "" {
		return fmt.Errorf("%w: themeName is required", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveAppearance(ctx, appearance); err != nil {
		return fmt.Errorf("update appearance: %w", err)
	}
	s.notify("theme", func(ctx context.Context) error {
		if err := s.bridge.UpdateThemeName(ctx, appearance.ThemeName); err != nil {
			return err
		}
		return s.bridge.UpdateThemeColors(ctx, appearance.PrimaryColor)
	})
	return nil
}

func (s *MemoryVerseService) Collections(ctx context.Context) []Collection {
	return s.repo.Collections(ctx)
}

// SaveCollection creates or replaces a named list of verses.
func (s *MemoryVerseService) SaveCollection(ctx context.Context, req SaveCollectionRequest) (Collection, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Collection{}, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	verses := make([]scripture.Verse, 0, len(req.References))
	for _, ref := range req.References {
		v, ok := s.index.ParseReference(ref)
		if !ok {
			return Collection{}, fmt.Errorf("%w: unknown reference %q", ErrInvalidRequest, ref)
		}
		verses = append(verses, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := Collection{ID: req.ID, Name: name, Verses: verses, CreatedAt: now, UpdatedAt: now}
	if c.ID == "" {
		c.ID = uuid.NewString()
	} else if existing, ok := s.findCollection(ctx, c.ID); ok {
		c.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.SaveCollection(ctx, c); err != nil {
		return Collection{}, fmt.Errorf("save collection: %w", err)
	}
	return c, nil
}

func (s *MemoryVerseService) DeleteCollection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DeleteCollection(ctx, id)
}

// ScheduleCollection queues every verse of a collection, one per slot,
// starting at start and spaced by every. A zero start means one interval
// from now; a non-positive every uses the widget refresh interval.
func (s *MemoryVerseService) ScheduleCollection(ctx context.Context, id string, start time.Time, every time.Duration) ([]ScheduledReveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.findCollection(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%w: collection %q", ErrNotFound, id)
	}
	if every <= 0 {
		every = s.repo.Settings(ctx).Interval()
	}
	if every <= 0 {
		every = 24 * time.Hour
	}
	if start.IsZero() {
		start = s.now().Add(every)
	}

	reveals := make([]ScheduledReveal, 0, len(c.Verses))
	for i, v := range c.Verses {
		reveal := ScheduledReveal{
			ID:           uuid.NewString(),
			Verse:        v,
			ScheduledFor: start.Add(every * time.Duration(i)),
			CollectionID: c.ID,
		}
		if err := s.repo.InsertPending(ctx, reveal); err != nil {
			s.metrics.RecordScheduled(metrics.SourceCollection, len(reveals))
			return reveals, fmt.Errorf("schedule collection %s: %w", c.ID, err)
		}
		reveals = append(reveals, reveal)
	}
	s.metrics.RecordScheduled(metrics.SourceCollection, len(reveals))
	s.syncPendingGauge(ctx)
	return reveals, nil
}

func (s *MemoryVerseService) findCollection(ctx context.Context, id string) (Collection, bool) {
	for _, c := range s.repo.Collections(ctx) {
		if c.ID == id {
			return c, true
		}
	}
	return Collection{}, false
}

// Wait blocks until every in-flight widget notification has finished.
func (s *MemoryVerseService) Wait() {
	s.notifies.Wait()
}

func (s *MemoryVerseService) notifyVerse(v scripture.Verse) {
	s.notify("verse", func(ctx context.Context) error {
		return s.bridge.UpdateVerse(ctx, v.Text, v.Reference)
	})
}

// notify runs fn in the background after the caller's writes are durable.
// Failures are logged and counted, never returned.
func (s *MemoryVerseService) notify(kind string, fn func(ctx context.Context) error) {
	s.notifies.Add(1)
	go func() {
		defer s.notifies.Done()
		defer func() {
			if r := recover(); r != nil {
				s.metrics.RecordWidgetPush(fmt.Errorf("panic: %v", r))
				s.log.Error("widget update panicked", zap.String("update", kind), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.widgetTimeout)
		defer cancel()

		err := fn(ctx)
		s.metrics.RecordWidgetPush(err)
		if err != nil {
			s.log.Warn("widget update failed", zap.String("update", kind), zap.Error(err))
		}
	}()
}

func (s *MemoryVerseService) syncPendingGauge(ctx context.Context) {
	s.metrics.SetPending(len(s.repo.ListPending(ctx)))
}

// recentFirst sorts by DisplayedAt, newest first, and keeps at most limit.
func recentFirst(records []DisplayedVerseRecord, limit int) []DisplayedVerseRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b DisplayedVerseRecord) int {
		return cmp.Compare(b.DisplayedAt.UnixNano(), a.DisplayedAt.UnixNano())
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// ResolveSlot turns a preset into a reveal time. Presets land at 09:00 in
// now's location; a custom time that is not in the future moves forward by
// whole days to the first slot after now.
func ResolveSlot(preset SlotPreset, custom *time.Time, now time.Time) (time.Time, error) {
	at9 := func(days int) time.Time {
		d := now.AddDate(0, 0, days)
		return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, now.Location())
	}

	switch preset {
	case SlotToday:
		return at9(0), nil
	case SlotTomorrow:
		return at9(1), nil
	case SlotNextWeek:
		return at9(7), nil
	case SlotCustom, "":
		if custom == nil {
			return time.Time{}, fmt.Errorf("%w: a custom time is required", ErrInvalidRequest)
		}
		t := *custom
		for !t.After(now) {
			// Sub saturates for very old inputs, so large gaps take a few jumps.
			days := int(now.Sub(t)/(24*time.Hour)) + 1
			t = t.AddDate(0, 0, days)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown slot preset %q", ErrInvalidRequest, preset)
	}
}
