package memoryverse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Wryz/bible-modules/internal/kv"
	"github.com/Wryz/bible-modules/internal/scripture"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidSettings = errors.New("invalid widget settings")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Storage keys. They match what the device app already wrote, so existing
// state keeps loading.
const (
	KeyScheduledVerses = "@bible:scheduled_verses"
	KeyDisplayedVerses = "@bible:displayed_verses"
	KeyCurrentVerse    = "@bible:current_verse"
	KeyWidgetSettings  = "@bible:widget_settings"
	KeyCollections     = "@bible:collections"
	KeyCustomColors    = "@bible:custom_colors"
	KeyThemeName       = "@bible:theme_name"
)

// MemoryVerseRepo is the schedule store. Reads never fail: a storage error
// or an undecodable value is logged and the empty default is returned.
// Writes return their error.
type MemoryVerseRepo interface {
	ListPending(ctx context.Context) []ScheduledReveal
	InsertPending(ctx context.Context, reveal ScheduledReveal) error
	RemovePending(ctx context.Context, id string) error

	ListDisplayed(ctx context.Context) []DisplayedVerseRecord
	AppendDisplayed(ctx context.Context, record DisplayedVerseRecord) error

	CurrentVerse(ctx context.Context) *scripture.Verse
	SetCurrentVerse(ctx context.Context, verse scripture.Verse) error

	Settings(ctx context.Context) WidgetSettings
	SaveSettings(ctx context.Context, settings WidgetSettings) error

	Collections(ctx context.Context) []Collection
	SaveCollection(ctx context.Context, collection Collection) error
	DeleteCollection(ctx context.Context, id string) error

	Appearance(ctx context.Context) Appearance
	SaveAppearance(ctx context.Context, appearance Appearance) error
}

type repository struct {
	store kv.Store
	log   *zap.Logger
}

func NewMemoryVerseRepo(store kv.Store, log *zap.Logger) MemoryVerseRepo {
	return &repository{store: store, log: log.Named("repository")}
}

func (r *repository) ListPending(ctx context.Context) []ScheduledReveal {
	var pending []ScheduledReveal
	if !r.read(ctx, KeyScheduledVerses, &pending) || pending == nil {
		return []ScheduledReveal{}
	}
	return pending
}

// InsertPending keeps the list ordered by ScheduledFor; a reveal with the
// same time as existing ones goes after them.
func (r *repository) InsertPending(ctx context.Context, reveal ScheduledReveal) error {
	pending := r.ListPending(ctx)
	at := len(pending)
	for i, p := range pending {
		if p.ScheduledFor.After(reveal.ScheduledFor) {
			at = i
			break
		}
	}
	pending = slices.Insert(pending, at, reveal)
	return r.write(ctx, KeyScheduledVerses, pending)
}

func (r *repository) RemovePending(ctx context.Context, id string) error {
	pending := r.ListPending(ctx)
	filtered := slices.DeleteFunc(slices.Clone(pending), func(p ScheduledReveal) bool {
		return p.ID == id
	})
	if len(filtered) == len(pending) {
		return nil
	}
	return r.write(ctx, KeyScheduledVerses, filtered)
}

func (r *repository) ListDisplayed(ctx context.Context) []DisplayedVerseRecord {
	var displayed []DisplayedVerseRecord
	if !r.read(ctx, KeyDisplayedVerses, &displayed) || displayed == nil {
		return []DisplayedVerseRecord{}
	}
	return displayed
}

// AppendDisplayed stores newest first and drops anything past
// HistoryRetention.
func (r *repository) AppendDisplayed(ctx context.Context, record DisplayedVerseRecord) error {
	displayed := slices.Insert(r.ListDisplayed(ctx), 0, record)
	if len(displayed) > HistoryRetention {
		displayed = displayed[:HistoryRetention]
	}
	return r.write(ctx, KeyDisplayedVerses, displayed)
}

func (r *repository) CurrentVerse(ctx context.Context) *scripture.Verse {
	var v scripture.Verse
	if !r.read(ctx, KeyCurrentVerse, &v) {
		return nil
	}
	return &v
}

func (r *repository) SetCurrentVerse(ctx context.Context, verse scripture.Verse) error {
	return r.write(ctx, KeyCurrentVerse, verse)
}

func (r *repository) Settings(ctx context.Context) WidgetSettings {
	var s WidgetSettings
	if !r.read(ctx, KeyWidgetSettings, &s) {
		return DefaultWidgetSettings()
	}
	return s
}

func (r *repository) SaveSettings(ctx context.Context, settings WidgetSettings) error {
	return r.write(ctx, KeyWidgetSettings, settings)
}

func (r *repository) Collections(ctx context.Context) []Collection {
	var collections []Collection
	if !r.read(ctx, KeyCollections, &collections) || collections == nil {
		return []Collection{}
	}
	return collections
}

// SaveCollection replaces a collection with the same ID or appends it.
func (r *repository) SaveCollection(ctx context.Context, collection Collection) error {
	collections := r.Collections(ctx)
	i := slices.IndexFunc(collections, func(c Collection) bool { return c.ID == collection.ID })
	if i >= 0 {
		collections[i] = collection
	} else {
		collections = append(collections, collection)
	}
	return r.write(ctx, KeyCollections, collections)
}

func (r *repository) DeleteCollection(ctx context.Context, id string) error {
	collections := r.Collections(ctx)
	filtered := slices.DeleteFunc(slices.Clone(collections), func(c Collection) bool { return c.ID == id })
	if len(filtered) == len(collections) {
		return ErrNotFound
	}
	return r.write(ctx, KeyCollections, filtered)
}

type customColors struct {
	Primary *string `json:"primary,omitempty"`
}

func (r *repository) Appearance(ctx context.Context) Appearance {
	var a Appearance
	if name, found, err := r.store.Get(ctx, KeyThemeName); err != nil {
		r.log.Warn("read failed, using default", zap.String("key", KeyThemeName), zap.Error(err))
	} else if found {
		a.ThemeName = name
	}

	var colors customColors
	if r.read(ctx, KeyCustomColors, &colors) {
		a.PrimaryColor = colors.Primary
	}
	return a
}

func (r *repository) SaveAppearance(ctx context.Context, appearance Appearance) error {
	if err := r.store.Set(ctx, KeyThemeName, appearance.ThemeName); err != nil {
		return fmt.Errorf("save %s: %w", KeyThemeName, err)
	}
	return r.write(ctx, KeyCustomColors, customColors{Primary: appearance.PrimaryColor})
}

// read decodes the value under key into dst and reports whether it did.
func (r *repository) read(ctx context.Context, key string, dst any) bool {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.log.Warn("read failed, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		r.log.Warn("undecodable value, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *repository) write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
