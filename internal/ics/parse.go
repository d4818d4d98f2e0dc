package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "inkcal/internal/log"
)

// Entry is one VEVENT of a feed, before recurrence expansion.
type Entry struct {
	Feed Feed

	UID         string
	Summary     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule   string
	ExDates []time.Time

	// RecurrenceID is set on entries that replace one instance of a
	// recurring event.
	RecurrenceID *time.Time
}

const (
	dateLayout      = "20060102"
	localTimeLayout = "20060102T150405"
	utcTimeLayout   = "20060102T150405Z"
)

// Parse reads the VEVENTs of an ICS body. Floating times and all-day dates
// are placed in loc. Malformed events are logged and skipped.
func Parse(feed Feed, body []byte, loc *time.Location) ([]Entry, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse %s: %w", feed.ID, err)
	}

	var entries []Entry
	for _, ve := range cal.Events() {
		e, err := parseEvent(feed, ve, loc)
		if err != nil {
			appLog.Warn("ics event skipped", "feed", feed.ID, "err", err)
			continue
		}
		entries = append(entries, e)
	}
	appLog.Debug("ics parsed", "feed", feed.ID, "events", len(entries))
	return entries, nil
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

func parseEvent(feed Feed, ve *ical.VEvent, loc *time.Location) (Entry, error) {
	e := Entry{
		Feed:        feed,
		UID:         propValue(ve, ical.ComponentPropertyUniqueId),
		Summary:     propValue(ve, ical.ComponentPropertySummary),
		Description: propValue(ve, ical.ComponentPropertyDescription),
		Location:    propValue(ve, ical.ComponentPropertyLocation),
		RRule:       propValue(ve, ical.ComponentPropertyRrule),
	}
	if e.UID == "" {
		return e, errors.New("missing UID")
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return e, fmt.Errorf("%s: missing DTSTART", e.UID)
	}
	e.AllDay = isDateValue(dtStart)

	if e.AllDay {
		start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(dtStart.Value), loc)
		if err != nil {
			return e, fmt.Errorf("%s: DTSTART: %w", e.UID, err)
		}
		e.Start, e.End = start, start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(dtEnd.Value), loc); err == nil && end.After(start) {
				e.End = end
			}
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return e, fmt.Errorf("%s: DTSTART: %w", e.UID, err)
		}
		e.Start, e.End = start, start
		if end, err := ve.GetEndAt(); err == nil && end.After(start) {
			e.End = end
		}
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		pl := propLocation(p, loc)
		for _, v := range strings.Split(p.Value, ",") {
			if t, err := parseTime(v, pl); err == nil {
				e.ExDates = append(e.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); rid != nil {
		if t, err := parseTime(rid.Value, propLocation(rid, loc)); err == nil {
			e.RecurrenceID = &t
		}
	}
	return e, nil
}

// isDateValue reports whether a DTSTART carries a date without a time.
func isDateValue(p *ical.IANAProperty) bool {
	if vs := p.ICalParameters["VALUE"]; len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// propLocation resolves the TZID parameter of p, falling back to loc when
// it is absent or unknown.
func propLocation(p *ical.IANAProperty, loc *time.Location) *time.Location {
	tzids := p.ICalParameters["TZID"]
	if len(tzids) == 0 || strings.TrimSpace(tzids[0]) == "" {
		return loc
	}
	tz, err := time.LoadLocation(strings.Trim(strings.TrimSpace(tzids[0]), `"`))
	if err != nil {
		appLog.Debug("ics unknown TZID", "tzid", tzids[0], "err", err)
		return loc
	}
	return tz
}

// parseTime reads the DATE, floating DATE-TIME and UTC DATE-TIME forms used
// by EXDATE and RECURRENCE-ID.
func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse(utcTimeLayout, v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation(localTimeLayout, v, loc)
	default:
		return time.ParseInLocation(dateLayout, v, loc)
	}
}
