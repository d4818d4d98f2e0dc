package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	Info("hidden")
	Warn("shown", "k", "v")
	Error("failed", errors.New("boom"), "path", "/tmp/a b")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at WARN level: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown k=v") {
		t.Fatalf("missing warn line: %q", out)
	}
	if !strings.Contains(out, `err=boom path="/tmp/a b"`) {
		t.Fatalf("missing error kv: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"chatty":  LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
