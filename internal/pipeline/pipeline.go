// Package pipeline gathers the inputs of a calendar page, renders it and
// writes the image.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inkcal/internal/funfact"
	"inkcal/internal/illustration"
	appLog "inkcal/internal/log"
	"inkcal/internal/model"
	"inkcal/internal/render"
)

// EventSource yields the events of the displayed days.
type EventSource interface {
	Events(ctx context.Context, today time.Time) model.EventsByDate
}

// WeatherSource yields one forecast per displayed day.
type WeatherSource interface {
	Forecast(ctx context.Context, days int) ([]model.DayWeather, error)
}

// FactSource yields the speech bubble text. It never fails.
type FactSource interface {
	Generate(ctx context.Context, today []model.CalendarEvent) funfact.Result
}

// IllustrationSource yields the path of the image under the bubble. It
// never fails.
type IllustrationSource interface {
	Generate(ctx context.Context, req illustration.Request) illustration.Result
}

// Per-collaborator time limits.
const (
	eventsTimeout       = 45 * time.Second
	weatherTimeout      = 15 * time.Second
	factTimeout         = 2 * time.Minute
	illustrationTimeout = 5 * time.Minute
)

// Status describes the last generation.
type Status struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration_ns"`
	OutputPath  string        `json:"output_path"`

	EventCount      int                 `json:"event_count"`
	WeatherFallback bool                `json:"weather_fallback"`
	Fact            funfact.Result      `json:"fact"`
	Illustration    illustration.Result `json:"illustration"`
	Weather         []model.DayWeather  `json:"weather,omitempty"`
	Events          model.EventsByDate  `json:"events,omitempty"`
	Error           string              `json:"error,omitempty"`
}

// Generator produces the calendar image. Generate calls are serialised.
type Generator struct {
	Events        EventSource
	Weather       WeatherSource
	Facts         FactSource
	Illustrations IllustrationSource
	Renderer      *render.Renderer

	OutputPath string
	// SecondaryPath is the decorative image; empty disables it.
	SecondaryPath string

	Loc *time.Location
	Now func() time.Time

	// mu serialises Generate. lastMu guards last.
	mu     sync.Mutex
	lastMu sync.RWMutex
	last   *Status
}

// Generate gathers all inputs, renders the page and atomically replaces the
// output file. Upstream failures are absorbed by fallbacks; only writing the
// image can fail.
func (g *Generator) Generate(ctx context.Context) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	today := g.today()
	st := Status{GeneratedAt: today, OutputPath: g.OutputPath}
	days := g.Renderer.Layout.Days

	evCtx, cancel := context.WithTimeout(ctx, eventsTimeout)
	events := g.Events.Events(evCtx, today)
	cancel()
	todays := events.For(today)
	for _, day := range events {
		st.EventCount += len(day)
	}
	st.Events = events

	wCtx, cancel := context.WithTimeout(ctx, weatherTimeout)
	forecast, err := g.Weather.Forecast(wCtx, days)
	cancel()
	if err != nil {
		appLog.Warn("weather unavailable; using fallback", "err", err)
		forecast = nil
		st.WeatherFallback = true
	}
	st.Weather = forecast

	fCtx, cancel := context.WithTimeout(ctx, factTimeout)
	st.Fact = g.Facts.Generate(fCtx, todays)
	cancel()

	iCtx, cancel := context.WithTimeout(ctx, illustrationTimeout)
	st.Illustration = g.Illustrations.Generate(iCtx, illustration.Request{Day: today, Events: todays, Fact: st.Fact.Text})
	cancel()

	img := g.Renderer.Render(render.Inputs{
		Today:            today,
		Events:           events,
		Weather:          forecast,
		FunFact:          st.Fact.Text,
		IllustrationPath: st.Illustration.Path,
		SecondaryPath:    g.SecondaryPath,
	})

	err = render.WriteFile(g.OutputPath, img)
	st.Duration = time.Since(start)
	if err != nil {
		st.Error = err.Error()
		g.setLast(st)
		return st, fmt.Errorf("pipeline: write %s: %w", g.OutputPath, err)
	}
	g.setLast(st)
	appLog.Info("calendar generated", "path", g.OutputPath, "events", st.EventCount, "duration", st.Duration.Round(time.Millisecond))
	return st, nil
}

// Last returns the status of the most recent generation, if any.
func (g *Generator) Last() (Status, bool) {
	g.lastMu.RLock()
	defer g.lastMu.RUnlock()
	if g.last == nil {
		return Status{}, false
	}
	return *g.last, true
}

func (g *Generator) setLast(st Status) {
	g.lastMu.Lock()
	g.last = &st
	g.lastMu.Unlock()
}

// Busy reports whether a generation is running.
func (g *Generator) Busy() bool {
	if g.mu.TryLock() {
		g.mu.Unlock()
		return false
	}
	return true
}

func (g *Generator) today() time.Time {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	loc := g.Loc
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}
