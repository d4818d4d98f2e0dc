package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "inkcal/internal/log"
	"inkcal/internal/model"
)

// maxInstances caps the occurrences one recurring event may produce inside
// a window.
const maxInstances = 500

// Window is the half-open interval [Start, End) occurrences are collected
// for. Occurrence times are converted to Loc.
type Window struct {
	Start time.Time
	End   time.Time
	Loc   *time.Location
}

// Expand turns entries into concrete occurrences starting inside w.
// Recurring entries are expanded with their RRULE minus EXDATEs, and
// instances replaced by a RECURRENCE-ID entry take that entry's content.
func Expand(entries []Entry, w Window) ([]model.Occurrence, error) {
	if !w.End.After(w.Start) {
		return nil, errors.New("ics: window end is not after its start")
	}
	if w.Loc == nil {
		w.Loc = time.Local
	}

	overrides := make(map[string][]Entry)
	var masters []Entry
	for _, e := range entries {
		if e.RecurrenceID != nil {
			overrides[e.UID] = append(overrides[e.UID], e)
			continue
		}
		masters = append(masters, e)
	}

	var out []model.Occurrence
	for _, m := range masters {
		ov := overrides[m.UID]
		if m.RRule == "" {
			if inWindow(m.Start, w) {
				out = append(out, occurrence(pick(m, ov, m.Start, m.End), w.Loc))
			}
			continue
		}
		out = append(out, expandRecurring(m, ov, w)...)
	}

	// Overrides whose master is missing or which were moved into the
	// window from an instance outside it.
	for uid, list := range overrides {
		for _, o := range list {
			if !inWindow(o.Start, w) || covered(out, uid, o.Start) {
				continue
			}
			out = append(out, occurrence(o, w.Loc))
		}
	}
	return out, nil
}

func expandRecurring(m Entry, overrides []Entry, w Window) []model.Occurrence {
	rule, err := rrule.StrToRRule(m.RRule)
	if err != nil {
		appLog.Warn("ics bad RRULE", "uid", m.UID, "rrule", m.RRule, "err", err)
		return nil
	}
	rule.DTStart(m.Start)

	set := &rrule.Set{}
	set.RRule(rule)
	for _, ex := range m.ExDates {
		set.ExDate(ex.In(m.Start.Location()))
	}

	// Between is inclusive at both ends; the window end is exclusive below.
	starts := set.Between(w.Start.In(m.Start.Location()), w.End.In(m.Start.Location()), true)
	if len(starts) > maxInstances {
		appLog.Warn("ics recurrence capped", "uid", m.UID, "instances", len(starts), "cap", maxInstances)
		starts = starts[:maxInstances]
	}

	duration := m.End.Sub(m.Start)
	var out []model.Occurrence
	for _, s := range starts {
		if !s.Before(w.End) {
			continue
		}
		e := pick(m, overrides, s, s.Add(duration))
		if !inWindow(e.Start, w) {
			continue
		}
		out = append(out, occurrence(e, w.Loc))
	}
	return out
}

// pick returns m placed at [start, end), or the override replacing the
// instance that starts at start.
func pick(m Entry, overrides []Entry, start, end time.Time) Entry {
	for _, o := range overrides {
		if o.RecurrenceID.Equal(start) {
			return o
		}
	}
	m.Start, m.End = start, end
	return m
}

func inWindow(t time.Time, w Window) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func covered(out []model.Occurrence, uid string, start time.Time) bool {
	for _, o := range out {
		if o.UID == uid && o.Start.Equal(start) {
			return true
		}
	}
	return false
}

func occurrence(e Entry, loc *time.Location) model.Occurrence {
	start, end := e.Start, e.End
	if !e.AllDay {
		start, end = start.In(loc), end.In(loc)
	}
	return model.Occurrence{
		FeedID:      e.Feed.ID,
		UID:         e.UID,
		Key:         start.Format(time.RFC3339),
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		AllDay:      e.AllDay,
		Start:       start,
		End:         end,
	}
}
