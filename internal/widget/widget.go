// Package widget pushes display state to the home-screen widget. The widget
// process reads a shared key space (an app group); this package writes it.
package widget

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Wryz/bible-modules/internal/kv"
)

// DefaultGroup is the shared app group the widget extension reads from.
const DefaultGroup = "group.com.bibleversesapp"

// Keys read by the widget extension.
const (
	KeyCurrentVerse      = "currentVerse"
	KeyCurrentReference  = "currentReference"
	KeyVerseTimestamp    = "verseTimestamp"
	KeyRefreshFrequency  = "refreshFrequency"
	KeyCustomHours       = "customHours"
	KeyThemePrimaryColor = "themePrimaryColor"
	KeyThemeName         = "themeName"
)

// Bridge is the contract the engine notifies. Callers treat every method as
// best effort: errors are logged, never surfaced to the user.
type Bridge interface {
	UpdateVerse(ctx context.Context, text, reference string) error
	UpdateWidgetSettings(ctx context.Context, frequency string, customHours *int) error
	UpdateThemeName(ctx context.Context, name string) error
	UpdateThemeColors(ctx context.Context, primaryHex *string) error
}

// SharedDefaults writes widget state into a kv.Store under the group's
// namespace.
type SharedDefaults struct {
	store kv.Store
	group string
	now   func() time.Time
}

func NewSharedDefaults(store kv.Store, group string) *SharedDefaults {
	if group == "" {
		group = DefaultGroup
	}
	return &SharedDefaults{store: store, group: group, now: time.Now}
}

// Key returns the namespaced key for one of the widget keys.
func (s *SharedDefaults) Key(name string) string {
	return s.group + "/" + name
}

func (s *SharedDefaults) UpdateVerse(ctx context.Context, text, reference string) error {
	if err := s.set(ctx, KeyCurrentVerse, text); err != nil {
		return err
	}
	if err := s.set(ctx, KeyCurrentReference, reference); err != nil {
		return err
	}
	ts := strconv.FormatFloat(float64(s.now().UnixMilli())/1000, 'f', 3, 64)
	return s.set(ctx, KeyVerseTimestamp, ts)
}

func (s *SharedDefaults) UpdateWidgetSettings(ctx context.Context, frequency string, customHours *int) error {
	if err := s.set(ctx, KeyRefreshFrequency, frequency); err != nil {
		return err
	}
	if customHours != nil {
		return s.set(ctx, KeyCustomHours, strconv.Itoa(*customHours))
	}
	return nil
}

func (s *SharedDefaults) UpdateThemeName(ctx context.Context, name string) error {
	return s.set(ctx, KeyThemeName, name)
}

// UpdateThemeColors stores the primary colour, or clears it when nil.
func (s *SharedDefaults) UpdateThemeColors(ctx context.Context, primaryHex *string) error {
	if primaryHex == nil {
		if err := s.store.Delete(ctx, s.Key(KeyThemePrimaryColor)); err != nil {
			return fmt.Errorf("widget: clear %s: %w", KeyThemePrimaryColor, err)
		}
		return nil
	}
	return s.set(ctx, KeyThemePrimaryColor, *primaryHex)
}

func (s *SharedDefaults) set(ctx context.Context, name, value string) error {
	if err := s.store.Set(ctx, s.Key(name), value); err != nil {
		return fmt.Errorf("widget: write %s: %w", name, err)
	}
	return nil
}

// Nop discards every update.
type Nop struct{}

func (Nop) UpdateVerse(context.Context, string, string) error        { return nil }
func (Nop) UpdateWidgetSettings(context.Context, string, *int) error { return nil }
func (Nop) UpdateThemeName(context.Context, string) error            { return nil }
func (Nop) UpdateThemeColors(context.Context, *string) error         { return nil }
