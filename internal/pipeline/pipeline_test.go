package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"inkcal/internal/funfact"
	"inkcal/internal/illustration"
	"inkcal/internal/model"
	"inkcal/internal/render"
)

type fakeEvents struct {
	active, maxActive atomic.Int32
	events            model.EventsByDate
}

func (f *fakeEvents) Events(_ context.Context, _ time.Time) model.EventsByDate {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return f.events
}

type fakeWeather struct {
	days []model.DayWeather
	err  error
}

func (f fakeWeather) Forecast(context.Context, int) ([]model.DayWeather, error) {
	return f.days, f.err
}

type fakeFacts struct{ got []model.CalendarEvent }

func (f *fakeFacts) Generate(_ context.Context, today []model.CalendarEvent) funfact.Result {
	f.got = today
	return funfact.Result{Text: "Snegle kan sove i tre år!"}
}

type fakeIllustrations struct{ req illustration.Request }

func (f *fakeIllustrations) Generate(_ context.Context, req illustration.Request) illustration.Result {
	f.req = req
	return illustration.Result{Path: "missing.png", Fallback: true}
}

func newGenerator(t *testing.T, w fakeWeather) (*Generator, *fakeEvents, *fakeFacts, *fakeIllustrations) {
	t.Helper()
	events := &fakeEvents{events: model.EventsByDate{
		"2026-10-16": {{Time: "08:00", Summary: "Svømning"}, {Time: model.AllDay, Summary: "Fødselsdag"}},
		"2026-10-17": {{Time: "12:00", Summary: "Frokost"}},
	}}
	facts := &fakeFacts{}
	ills := &fakeIllustrations{}
	g := &Generator{
		Events:        events,
		Weather:       w,
		Facts:         facts,
		Illustrations: ills,
		Renderer:      render.NewRenderer(render.Danish, render.BundledFonts()),
		OutputPath:    filepath.Join(t.TempDir(), "out", "calendar.bmp"),
		Loc:           time.UTC,
		Now:           func() time.Time { return time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC) },
	}
	return g, events, facts, ills
}

func TestGenerate(t *testing.T) {
	g, _, facts, ills := newGenerator(t, fakeWeather{days: render.FallbackWeather()})

	if _, ok := g.Last(); ok {
		t.Fatal("status before first run")
	}
	st, err := g.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.EventCount != 3 || st.WeatherFallback || st.Fact.Text == "" {
		t.Fatalf("status = %+v", st)
	}
	if len(facts.got) != 2 || facts.got[0].Summary != "Svømning" {
		t.Fatalf("fact source got %+v", facts.got)
	}
	if ills.req.Fact != st.Fact.Text || len(ills.req.Events) != 2 {
		t.Fatalf("illustration request = %+v", ills.req)
	}

	f, err := os.Open(g.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 480 {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	last, ok := g.Last()
	if !ok || last.OutputPath != g.OutputPath {
		t.Fatalf("last = %+v", last)
	}
}

func TestGenerateWeatherFallback(t *testing.T) {
	g, _, _, _ := newGenerator(t, fakeWeather{err: errors.New("down")})
	st, err := g.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !st.WeatherFallback || st.Weather != nil {
		t.Fatalf("status = %+v", st)
	}
}

func TestGenerateWriteError(t *testing.T) {
	g, _, _, _ := newGenerator(t, fakeWeather{})
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	g.OutputPath = filepath.Join(blocker, "calendar.bmp")

	if _, err := g.Generate(context.Background()); err == nil {
		t.Fatal("expected write error")
	}
	if last, ok := g.Last(); !ok || last.Error == "" {
		t.Fatalf("last = %+v", last)
	}
}

func TestGenerateSerialised(t *testing.T) {
	g, events, _, _ := newGenerator(t, fakeWeather{})
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Generate(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if events.maxActive.Load() != 1 {
		t.Fatalf("%d generations overlapped", events.maxActive.Load())
	}
	if g.Busy() {
		t.Fatal("busy after all generations returned")
	}
}
