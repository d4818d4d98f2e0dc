package illustration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inkcal/internal/model"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestModeResolve(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	want := []Mode{ModeEvents, ModeFact, ModeEvents, ModeFact, ModeEvents, ModeFact, ModeEvents}
	for i, w := range want {
		day := monday.AddDate(0, 0, i)
		if got := ModeAuto.Resolve(day); got != w {
			t.Errorf("%s: %s, want %s", day.Weekday(), got, w)
		}
	}
	if ModeFact.Resolve(monday) != ModeFact {
		t.Error("explicit mode changed")
	}
}

func TestMood(t *testing.T) {
	cases := map[int]string{1: "happy and organized", 2: "happy and organized", 3: "busy but cheerful", 4: "busy but cheerful", 5: "overwhelmed but determined"}
	for n, want := range cases {
		if got := Mood(n); got != want {
			t.Errorf("Mood(%d) = %q", n, got)
		}
	}
}

func TestEventsPrompt(t *testing.T) {
	if EventsPrompt(nil) != relaxedPrompt {
		t.Error("empty day should draw the relaxed cat")
	}
	events := []model.CalendarEvent{
		{Time: "08:00", Summary: "Svømning"},
		{Time: "10:00", Summary: "Tandlæge"},
		{Time: "12:00", Summary: "Frokost"},
		{Time: model.AllDay, Summary: "Fødselsdag"},
	}
	got := EventsPrompt(events)
	if !strings.Contains(got, "busy but cheerful") || !strings.Contains(got, "08:00: Svømning; 10:00: Tandlæge; 12:00: Frokost") || strings.Contains(got, "Fødselsdag") {
		t.Errorf("prompt = %q", got)
	}
}

func TestSceneFor(t *testing.T) {
	cases := map[string]string{
		"Pingviner kan springe næsten 3 meter!": "cheerful penguin wearing a red scarf, flippers spread wide",
		"ELEFANTER hører med fødderne":           "wise elephant with red ears, touching the ground with its trunk",
		"Månen er lavet af sten":                 defaultScene,
	}
	for fact, want := range cases {
		if got := SceneFor(fact); got != want {
			t.Errorf("SceneFor(%q) = %q", fact, got)
		}
	}
	long := strings.Repeat("ø", 150)
	if p := FactPrompt(long); !strings.Contains(p, strings.Repeat("ø", 100)+"...") || strings.Contains(p, strings.Repeat("ø", 101)) {
		t.Error("fact excerpt not cut at 100 runes")
	}
}

func TestGenerateDownloadsImage(t *testing.T) {
	img := pngBytes(t)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generate":
			var req imageRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Model == "flaky" {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[{"url":"` + srv.URL + `/files/cat.png"}]}`))
		case "/files/cat.png":
			_, _ = w.Write(img)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	g := NewGenerator(srv.URL+"/generate", "key", []string{"flaky", "good"}, ModeEvents, dir, "assets/dog.png")
	g.HTTP = srv.Client()

	res := g.Generate(context.Background(), Request{Day: time.Now()})
	if res.Fallback || res.Model != "good" || res.Path != filepath.Join(dir, "calendar_animal.png") {
		t.Fatalf("res = %+v", res)
	}
	got, err := os.ReadFile(res.Path)
	if err != nil || !bytes.Equal(got, img) {
		t.Fatalf("saved image differs: %v", err)
	}
}

func TestGenerateBase64(t *testing.T) {
	img := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"` + base64.StdEncoding.EncodeToString(img) + `"}]}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	g := NewGenerator(srv.URL, "key", []string{"m"}, ModeFact, dir, "fallback.png")
	g.HTTP = srv.Client()
	res := g.Generate(context.Background(), Request{Fact: "Bier danser"})
	if res.Fallback || res.Path != filepath.Join(dir, "llm_animal.png") {
		t.Fatalf("res = %+v", res)
	}
	if !strings.Contains(res.Prompt, "happy bee") {
		t.Fatalf("prompt = %q", res.Prompt)
	}
}

func TestGenerateFallbacks(t *testing.T) {
	notImage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"` + base64.StdEncoding.EncodeToString([]byte("hello")) + `"}]}`))
	}))
	defer notImage.Close()

	cases := map[string]*Generator{
		"no key":    NewGenerator(notImage.URL, "", []string{"m"}, ModeEvents, t.TempDir(), "fallback.png"),
		"no models": NewGenerator(notImage.URL, "key", nil, ModeEvents, t.TempDir(), "fallback.png"),
		"not image": NewGenerator(notImage.URL, "key", []string{"m"}, ModeEvents, t.TempDir(), "fallback.png"),
	}
	for name, g := range cases {
		g.HTTP = notImage.Client()
		res := g.Generate(context.Background(), Request{Day: time.Now()})
		if !res.Fallback || res.Path != "fallback.png" || res.Error == "" {
			t.Errorf("%s: res = %+v", name, res)
		}
	}
}
