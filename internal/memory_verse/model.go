package memoryverse

import (
	"fmt"
	"time"

	"github.com/Wryz/bible-modules/internal/scripture"
)

const (
	// HistoryRetention caps the stored display history.
	HistoryRetention = 100
	// HistoryViewLimit caps what History returns.
	HistoryViewLimit = 30
	// RecentExclusionWindow is how many recent displays populate avoids.
	RecentExclusionWindow = 20
	DefaultPopulateCount  = 7
	// PopulateAttemptFactor bounds populate to count*factor picker calls.
	PopulateAttemptFactor = 10

	defaultCustomHours = 24
)

// RefreshFrequency is how often the widget rotates to a new verse. The zero
// value is FrequencyDaily.
type RefreshFrequency int

const (
	FrequencyDaily RefreshFrequency = iota
	FrequencyHourly
	FrequencyCustom
	FrequencyOnAppOpen
)

var frequencyNames = map[RefreshFrequency]string{
	FrequencyDaily:     "daily",
	FrequencyHourly:    "hourly",
	FrequencyCustom:    "custom",
	FrequencyOnAppOpen: "onAppOpen",
}

func (f RefreshFrequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("RefreshFrequency(%d)", int(f))
}

func ParseRefreshFrequency(s string) (RefreshFrequency, error) {
	for f, name := range frequencyNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown refresh frequency %q", ErrInvalidSettings, s)
}

func (f RefreshFrequency) MarshalText() ([]byte, error) {
	if _, ok := frequencyNames[f]; !ok {
		return nil, fmt.Errorf("%w: unknown refresh frequency %d", ErrInvalidSettings, int(f))
	}
	return []byte(f.String()), nil
}

func (f *RefreshFrequency) UnmarshalText(b []byte) error {
	parsed, err := ParseRefreshFrequency(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

type WidgetSettings struct {
	RefreshFrequency RefreshFrequency `json:"refreshFrequency"`
	CustomHours      *int             `json:"customHours,omitempty"`
}

// DefaultWidgetSettings is used when nothing has been saved yet.
func DefaultWidgetSettings() WidgetSettings {
	return WidgetSettings{RefreshFrequency: FrequencyDaily}
}

func (s WidgetSettings) Validate() error {
	if _, ok := frequencyNames[s.RefreshFrequency]; !ok {
		return fmt.Errorf("%w: unknown refresh frequency %d", ErrInvalidSettings, int(s.RefreshFrequency))
	}
	if s.CustomHours != nil && *s.CustomHours <= 0 {
		return fmt.Errorf("%w: customHours must be positive", ErrInvalidSettings)
	}
	return nil
}

// Interval is the spacing between automatic reveals. Zero means the widget
// only changes when the app comes to the foreground.
func (s WidgetSettings) Interval() time.Duration {
	switch s.RefreshFrequency {
	case FrequencyHourly:
		return time.Hour
	case FrequencyCustom:
		if s.CustomHours == nil || *s.CustomHours <= 0 {
			return defaultCustomHours * time.Hour
		}
		return time.Duration(*s.CustomHours) * time.Hour
	case FrequencyOnAppOpen:
		return 0
	default:
		return 24 * time.Hour
	}
}

// ScheduledReveal is a verse waiting to become the current verse at or after
// ScheduledFor.
type ScheduledReveal struct {
	ID           string          `json:"id"`
	Verse        scripture.Verse `json:"verse"`
	ScheduledFor time.Time       `json:"scheduledFor"`
	CollectionID string          `json:"collectionId,omitempty"`
}

type DisplayedVerseRecord struct {
	Verse        scripture.Verse `json:"verse"`
	DisplayedAt  time.Time       `json:"displayedAt"`
	ScheduledFor *time.Time      `json:"scheduledFor,omitempty"`
}

type Collection struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Verses    []scripture.Verse `json:"verses"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type Appearance struct {
	ThemeName    string  `json:"themeName"`
	PrimaryColor *string `json:"primaryColor,omitempty"`
}

// Slot presets offered when scheduling a single verse.
type SlotPreset string

const (
	SlotToday    SlotPreset = "today"
	SlotTomorrow SlotPreset = "tomorrow"
	SlotNextWeek SlotPreset = "nextWeek"
	SlotCustom   SlotPreset = "custom"
)

// ScheduleRequest is the body of POST /schedule.
type ScheduleRequest struct {
	Reference    string     `json:"reference"`
	Preset       SlotPreset `json:"preset"`
	At           *time.Time `json:"at,omitempty"`
	CollectionID string     `json:"collectionId,omitempty"`
}

// SaveCollectionRequest is the body of POST /collections. An empty ID creates
// a new collection.
type SaveCollectionRequest struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	References []string `json:"references"`
}

// ScheduleCollectionRequest is the body of POST /collections/{id}/schedule.
type ScheduleCollectionRequest struct {
	Start      *time.Time `json:"start,omitempty"`
	EveryHours int        `json:"everyHours"`
}
