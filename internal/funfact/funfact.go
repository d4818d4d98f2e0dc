// Package funfact asks an OpenRouter chat model for the short fact shown in
// the speech bubble.
package funfact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	appLog "inkcal/internal/log"
	"inkcal/internal/model"
	"inkcal/internal/provider"
)

// Result is one generated fact and how it came about.
type Result struct {
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
	// Model is the model that answered, empty for a fallback fact.
	Model    string `json:"model,omitempty"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// Client generates facts. The zero value is not usable; see NewClient.
type Client struct {
	BaseURL string
	APIKey  string
	Models  []string
	// Locale is "da" or "en" and selects prompts and fallback facts.
	Locale string

	HTTP *http.Client
	// Pick returns a random index in [0, n).
	Pick func(n int) int
}

// NewClient returns a client with a 30s timeout per model.
func NewClient(baseURL, apiKey string, models []string, locale string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Models:  models,
		Locale:  locale,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Pick:    rand.Intn,
	}
}

// Generate returns a fact about the first of today's events, or about a
// random topic when the day is empty. It never fails: without an API key or
// when every model fails, a random fallback fact is returned.
func (c *Client) Generate(ctx context.Context, today []model.CalendarEvent) Result {
	prompt := c.Prompt(today)
	res := Result{Prompt: prompt}

	if c.APIKey == "" {
		appLog.Warn("fun fact: no API key; using fallback")
		res.Error = "no API key"
		return c.fallback(res)
	}

	attempts := make([]provider.Attempt[string], 0, len(c.Models))
	for _, m := range c.Models {
		m := m
		attempts = append(attempts, provider.Attempt[string]{
			Name: m,
			Run:  func(ctx context.Context) (string, error) { return c.complete(ctx, m, prompt) },
		})
	}
	text, name, err := provider.First(ctx, attempts)
	if err != nil {
		appLog.Error("fun fact: all models failed", err)
		res.Error = err.Error()
		return c.fallback(res)
	}
	res.Text, res.Model = text, name
	appLog.Info("fun fact generated", "model", name)
	return res
}

func (c *Client) fallback(res Result) Result {
	res.Text = c.Fallback()
	res.Fallback = true
	return res
}

// Prompt builds the request text for today's events.
func (c *Client) Prompt(today []model.CalendarEvent) string {
	p := promptsFor(c.Locale)
	if len(today) == 0 {
		return fmt.Sprintf(p.topic, p.topics[c.pick(len(p.topics))])
	}
	return fmt.Sprintf(p.event, today[0].Summary)
}

// Fallback returns a random built-in fact.
func (c *Client) Fallback() string {
	facts := promptsFor(c.Locale).facts
	return facts[c.pick(len(facts))]
}

func (c *Client) pick(n int) int {
	if c.Pick == nil {
		return rand.Intn(n)
	}
	return c.Pick(n)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, modelName, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    modelName,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "http://localhost:8000")
	req.Header.Set("X-Title", "Calendar Generator")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	text := CleanMarkdown(out.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}

// CleanMarkdown strips emphasis markers (*, **, _) and surrounding space.
func CleanMarkdown(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.TrimSpace(s)
}
