package model

import "time"

// AllDay is the Time value carried by events without a start time.
const AllDay = "All day"

// DefaultSymbol marks events from calendars that configure no symbol.
const DefaultSymbol = "●"

// CalendarEvent is one event as displayed in a day column.
type CalendarEvent struct {
	// Time is "HH:MM" in the display timezone, or AllDay.
	Time        string `json:"time"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`

	// CalendarSymbol is a single glyph prefixed to the summary so events
	// from different calendars can be told apart on a monochrome panel.
	CalendarSymbol string `json:"calendar_symbol"`
	CalendarName   string `json:"calendar_name"`
	CalendarID     string `json:"calendar_id"`
}

// IsAllDay reports whether the event has no start time.
func (e CalendarEvent) IsAllDay() bool {
	return e.Time == AllDay
}

// EventsByDate maps a DateKey to the events of that day, ordered by time
// with all-day events last.
type EventsByDate map[string][]CalendarEvent

// DateKey returns the civil date of t in its own location as "2006-01-02".
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// For returns the events on the civil date of t.
func (m EventsByDate) For(t time.Time) []CalendarEvent {
	if m == nil {
		return nil
	}
	return m[DateKey(t)]
}

// DayWeather is the daily forecast for one displayed day.
type DayWeather struct {
	WeatherCode int `json:"weather_code"`
	MinTemp     int `json:"min_temp"`
	MaxTemp     int `json:"max_temp"`
}

// Occurrence is one expanded instance of an ICS event. Timed instances
// are in the display zone; all-day ones keep their civil date.
type Occurrence struct {
	FeedID string
	UID    string
	// Key is the RFC 3339 start, unique per UID.
	Key string

	Summary     string
	Description string
	Location    string

	AllDay     bool
	Start, End time.Time
}
