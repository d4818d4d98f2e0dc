// Package illustration generates the daily drawing through the ImageRouter
// image API and stores it next to the calendar output.
package illustration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Formats the image API may return.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	appLog "inkcal/internal/log"
	"inkcal/internal/model"
	"inkcal/internal/provider"
)

// maxImageBytes bounds a downloaded illustration.
const maxImageBytes = 20 << 20

// Request is what a drawing is made from.
type Request struct {
	Day    time.Time
	Events []model.CalendarEvent
	Fact   string
}

// Result says where the drawing for a request ended up.
type Result struct {
	Path     string `json:"path"`
	Mode     Mode   `json:"mode"`
	Prompt   string `json:"prompt"`
	Model    string `json:"model,omitempty"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// Generator produces illustration files. Failures never surface as errors;
// FallbackPath is returned instead.
type Generator struct {
	BaseURL string
	APIKey  string
	Models  []string
	Mode    Mode

	// OutputDir receives the downloaded images.
	OutputDir    string
	FallbackPath string

	HTTP *http.Client
}

// NewGenerator returns a generator with a 2 minute timeout per model, image
// generation being slow.
func NewGenerator(baseURL, apiKey string, models []string, mode Mode, outputDir, fallback string) *Generator {
	return &Generator{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Models:       models,
		Mode:         mode,
		OutputDir:    outputDir,
		FallbackPath: fallback,
		HTTP:         &http.Client{Timeout: 2 * time.Minute},
	}
}

// Generate draws the illustration for req and returns the path of the image
// to place on the page.
func (g *Generator) Generate(ctx context.Context, req Request) Result {
	res := Result{Mode: g.Mode.Resolve(req.Day)}
	file := "calendar_animal.png"
	if res.Mode == ModeFact {
		res.Prompt = FactPrompt(req.Fact)
		file = "llm_animal.png"
	} else {
		res.Prompt = EventsPrompt(req.Events)
	}

	if g.APIKey == "" {
		appLog.Warn("illustration: no API key; using fallback", "path", g.FallbackPath)
		res.Error = "no API key"
		return g.fallback(res)
	}

	attempts := make([]provider.Attempt[[]byte], 0, len(g.Models))
	for _, m := range g.Models {
		m := m
		attempts = append(attempts, provider.Attempt[[]byte]{
			Name: m,
			Run:  func(ctx context.Context) ([]byte, error) { return g.create(ctx, m, res.Prompt) },
		})
	}
	data, name, err := provider.First(ctx, attempts)
	if err != nil {
		appLog.Error("illustration: all models failed", err)
		res.Error = err.Error()
		return g.fallback(res)
	}

	path := filepath.Join(g.OutputDir, file)
	if err := writeAtomic(path, data); err != nil {
		appLog.Error("illustration: save failed", err, "path", path)
		res.Error = err.Error()
		return g.fallback(res)
	}
	res.Path, res.Model = path, name
	appLog.Info("illustration generated", "model", name, "mode", res.Mode, "path", path)
	return res
}

func (g *Generator) fallback(res Result) Result {
	res.Path = g.FallbackPath
	res.Fallback = true
	return res
}

type imageRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error json.RawMessage `json:"error,omitempty"`
}

// create asks one model for an image and returns the image bytes.
func (g *Generator) create(ctx context.Context, modelName, prompt string) ([]byte, error) {
	payload, err := json.Marshal(imageRequest{Prompt: prompt, Model: modelName})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out imageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxImageBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("status %s: decode: %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK || len(out.Data) == 0 {
		return nil, fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(out.Error)))
	}

	var data []byte
	switch d := out.Data[0]; {
	case d.URL != "":
		data, err = g.download(ctx, d.URL)
	case d.B64JSON != "":
		data, err = base64.StdEncoding.DecodeString(d.B64JSON)
	default:
		err = errors.New("response has neither url nor b64_json")
	}
	if err != nil {
		return nil, err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("not an image: %w", err)
	}
	return data, nil
}

func (g *Generator) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

func (g *Generator) client() *http.Client {
	if g.HTTP == nil {
		return http.DefaultClient
	}
	return g.HTTP
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".inkcal-illustration-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
