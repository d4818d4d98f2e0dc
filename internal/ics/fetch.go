package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "inkcal/internal/log"
)

// Feed is one subscribed calendar.
type Feed struct {
	// ID identifies the calendar in events and logs.
	ID  string
	URL string

	// Name and Symbol are copied onto every event of the feed.
	Name   string
	Symbol string
}

// Fetched is the body of one feed, fresh or from the disk cache.
type Fetched struct {
	Feed   Feed
	Body   []byte
	Cached bool
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads ICS feeds with conditional requests and keeps the last
// good body of every feed on disk. When the server fails, the cached body is
// served instead.
type Fetcher struct {
	client *http.Client
	dir    string
}

// NewFetcher returns a fetcher caching under dir. A nil client gets a 15s
// timeout client.
func NewFetcher(dir string, client *http.Client) *Fetcher {
	if dir == "" {
		dir = "./cache/ics-cache"
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client, dir: dir}
}

// Fetch downloads feed, honouring ETag and Last-Modified from the previous
// successful fetch.
func (f *Fetcher) Fetch(ctx context.Context, feed Feed) (Fetched, error) {
	if feed.URL == "" {
		return Fetched{}, errors.New("ics: feed has no URL")
	}

	entryDir := f.entryDir(feed.URL)
	if err := os.MkdirAll(entryDir, 0o700); err != nil {
		return Fetched{}, fmt.Errorf("ics: cache dir: %w", err)
	}
	meta := readMeta(entryDir)
	cached, _ := os.ReadFile(filepath.Join(entryDir, "body.ics"))

	useCache := func(reason error) (Fetched, error) {
		if len(cached) == 0 {
			return Fetched{}, reason
		}
		appLog.Warn("ics fetch failed; serving cached body", "feed", feed.ID, "url", RedactURL(feed.URL), "err", reason)
		return Fetched{Feed: feed, Body: cached, Cached: true}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return Fetched{}, fmt.Errorf("ics: build request: %w", err)
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("ics fetch", "feed", feed.ID, "url", RedactURL(feed.URL))
	resp, err := f.client.Do(req)
	if err != nil {
		return useCache(fmt.Errorf("ics: get: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return useCache(fmt.Errorf("ics: read body: %w", err))
		}
		meta = cacheMeta{
			URL:          feed.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := writeCache(entryDir, meta, body); err != nil {
			appLog.Error("ics cache write failed", err, "feed", feed.ID)
		}
		appLog.Info("ics fetched", "feed", feed.ID, "bytes", len(body))
		return Fetched{Feed: feed, Body: body}, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return Fetched{}, errors.New("ics: 304 Not Modified without a cached body")
		}
		appLog.Debug("ics not modified", "feed", feed.ID)
		return Fetched{Feed: feed, Body: cached, Cached: true}, nil

	default:
		return useCache(fmt.Errorf("ics: unexpected status %s", resp.Status))
	}
}

// entryDir is the per-URL cache directory, named by a URL hash so tokens in
// the URL never reach the file system.
func (f *Fetcher) entryDir(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:8]))
}

func readMeta(dir string) cacheMeta {
	var m cacheMeta
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return cacheMeta{}
	}
	return m
}

// writeCache stores the body before the metadata so the metadata never
// refers to a body that is not there.
func writeCache(dir string, m cacheMeta, body []byte) error {
	if err := os.WriteFile(filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
}

// RedactURL keeps only scheme and host of a feed URL, since private
// calendar links carry their secret in the path or query.
func RedactURL(u string) string {
	const suffix = "/...(redacted)"
	scheme := strings.Index(u, "://")
	if scheme < 0 {
		return "ics://...(redacted)"
	}
	rest := u[scheme+3:]
	if end := strings.IndexAny(rest, "/?#"); end >= 0 {
		rest = rest[:end]
	}
	return u[:scheme+3] + rest + suffix
}
