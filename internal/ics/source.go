package ics

import (
	"context"
	"sort"
	"time"

	appLog "inkcal/internal/log"
	"inkcal/internal/model"
)

// maxPerFeed is how many of a feed's earliest events are kept per window.
const maxPerFeed = 20

// Source collects the events of all feeds for the days on the page.
type Source struct {
	Feeds   []Feed
	Fetcher *Fetcher
	Loc     *time.Location

	// Days is the number of days starting today to collect.
	Days int
}

// Events returns the events of the Days days starting at today's date in
// s.Loc. Every day of the window has a key, possibly with no events. Feeds
// that fail are logged and contribute nothing.
func (s *Source) Events(ctx context.Context, today time.Time) model.EventsByDate {
	loc := s.Loc
	if loc == nil {
		loc = time.Local
	}
	days := s.Days
	if days <= 0 {
		days = 4
	}

	y, m, d := today.In(loc).Date()
	w := Window{Start: time.Date(y, m, d, 0, 0, 0, 0, loc), Loc: loc}
	w.End = w.Start.AddDate(0, 0, days)

	out := make(model.EventsByDate, days)
	for i := 0; i < days; i++ {
		out[model.DateKey(w.Start.AddDate(0, 0, i))] = nil
	}

	for _, feed := range s.Feeds {
		occs, err := s.feedOccurrences(ctx, feed, w)
		if err != nil {
			appLog.Error("calendar skipped", err, "feed", feed.ID, "url", RedactURL(feed.URL))
			continue
		}
		for _, o := range occs {
			key := model.DateKey(o.Start)
			if _, ok := out[key]; !ok {
				continue
			}
			out[key] = append(out[key], toEvent(feed, o))
		}
	}

	for key := range out {
		SortDay(out[key])
	}
	return out
}

func (s *Source) feedOccurrences(ctx context.Context, feed Feed, w Window) ([]model.Occurrence, error) {
	fetched, err := s.Fetcher.Fetch(ctx, feed)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(feed, fetched.Body, w.Loc)
	if err != nil {
		return nil, err
	}
	occs, err := Expand(entries, w)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(occs, func(i, j int) bool { return occs[i].Start.Before(occs[j].Start) })
	if len(occs) > maxPerFeed {
		occs = occs[:maxPerFeed]
	}
	return occs, nil
}

func toEvent(feed Feed, o model.Occurrence) model.CalendarEvent {
	t := model.AllDay
	if !o.AllDay {
		t = o.Start.Format("15:04")
	}
	return model.CalendarEvent{
		Time:           t,
		Summary:        o.Summary,
		Description:    o.Description,
		CalendarSymbol: feed.Symbol,
		CalendarName:   feed.Name,
		CalendarID:     feed.ID,
	}
}

// SortDay orders one day's events by start time with all-day events last.
// Events with equal times keep their relative order.
func SortDay(events []model.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.IsAllDay() != b.IsAllDay() {
			return b.IsAllDay()
		}
		return a.Time < b.Time
	})
}
