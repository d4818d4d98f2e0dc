package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/image/bmp"

	"inkcal/internal/config"
	"inkcal/internal/convert"
	"inkcal/internal/ics"
	appLog "inkcal/internal/log"
	"inkcal/internal/pipeline"
)

// Generator is the render pipeline behind the image endpoints.
type Generator interface {
	Generate(ctx context.Context) (pipeline.Status, error)
	Last() (pipeline.Status, bool)
	Busy() bool
}

// Server serves the calendar image, its status and a few debug endpoints.
type Server struct {
	cfg   *config.Config
	gen   Generator
	facts pipeline.FactSource
	loc   *time.Location
	mux   *http.ServeMux
	index *template.Template

	// NextRefresh reports the next scheduled render. Nil hides it.
	NextRefresh func() time.Time
}

//go:embed templates/index.html
var templates embed.FS

// NewServer constructs a new Server. facts may be nil, which disables
// /debug/llm.
func NewServer(cfg *config.Config, gen Generator, facts pipeline.FactSource) *Server {
	s := &Server{
		cfg:   cfg,
		gen:   gen,
		facts: facts,
		loc:   resolveLocationOrLocal(cfg.Timezone),
		mux:   http.NewServeMux(),
		index: template.Must(template.ParseFS(templates, "templates/index.html")),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="InkCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/calendar.png", s.handleCalendar)
	s.mux.HandleFunc("/calendar", s.handleCalendar)
	s.mux.HandleFunc("/calendar.bin", s.handlePlanes)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/info", s.handleInfo)
	s.mux.HandleFunc("/refresh", s.handleRefresh)
	s.mux.HandleFunc("/debug/llm", s.handleDebugLLM)
	s.mux.HandleFunc("/debug/env", s.handleDebugEnv)
	// Exact-root match, equivalent to the Go 1.22 pattern "/{$}".
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.handleIndex(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// outputInfo stats the rendered image.
func (s *Server) outputInfo() (fs.FileInfo, bool) {
	fi, err := os.Stat(s.cfg.OutputPath)
	if err != nil {
		return nil, false
	}
	return fi, true
}

// readOutput returns the rendered image, rendering it first when missing.
func (s *Server) readOutput(ctx context.Context) ([]byte, error) {
	if _, ok := s.outputInfo(); !ok {
		appLog.Warn("calendar image not found; generating", "path", s.cfg.OutputPath)
		if _, err := s.gen.Generate(ctx); err != nil {
			return nil, err
		}
	}
	return os.ReadFile(s.cfg.OutputPath)
}

func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// handleCalendar serves the rendered BMP with caching disabled.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	data, err := s.readOutput(r.Context())
	if err != nil {
		appLog.Error("serve calendar failed", err)
		http.Error(w, "Calendar image not available", http.StatusNotFound)
		return
	}
	noCache(w)
	w.Header().Set("Content-Type", "image/bmp")
	w.Header().Set("Content-Disposition", `inline; filename="calendar.bmp"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// handlePlanes serves the packed black plane followed by the red plane.
func (s *Server) handlePlanes(w http.ResponseWriter, r *http.Request) {
	data, err := s.readOutput(r.Context())
	if err != nil {
		appLog.Error("serve planes failed", err)
		http.Error(w, "Calendar image not available", http.StatusNotFound)
		return
	}
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		appLog.Error("decode calendar failed", err, "path", s.cfg.OutputPath)
		writeError(w, http.StatusInternalServerError, "failed to decode calendar image")
		return
	}
	black, red := convert.PackPlanes(img)

	noCache(w)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(black)+len(red)))
	w.Header().Set("X-Panel-Width", strconv.Itoa(img.Bounds().Dx()))
	w.Header().Set("X-Panel-Height", strconv.Itoa(img.Bounds().Dy()))
	_, _ = w.Write(black)
	_, _ = w.Write(red)
}

type statusResponse struct {
	Status         string           `json:"status"`
	CalendarExists bool             `json:"calendar_exists"`
	CalendarPath   string           `json:"calendar_path"`
	FileAgeSeconds *float64         `json:"file_age_seconds"`
	LastModified   *time.Time       `json:"last_modified"`
	ServerTime     time.Time        `json:"server_time"`
	Busy           bool             `json:"busy"`
	NextRefresh    *time.Time       `json:"next_refresh,omitempty"`
	Last           *pipeline.Status `json:"last_render,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().In(s.loc)
	resp := statusResponse{
		Status:       "running",
		CalendarPath: s.cfg.OutputPath,
		ServerTime:   now,
		Busy:         s.gen.Busy(),
	}
	if fi, ok := s.outputInfo(); ok {
		age := now.Sub(fi.ModTime()).Seconds()
		mod := fi.ModTime().In(s.loc)
		resp.CalendarExists = true
		resp.FileAgeSeconds = &age
		resp.LastModified = &mod
	}
	if next := s.nextRefresh(); !next.IsZero() {
		resp.NextRefresh = &next
	}
	if last, ok := s.gen.Last(); ok {
		// Per-day payloads are omitted.
		last.Events, last.Weather = nil, nil
		resp.Last = &last
	}
	writeJSON(w, http.StatusOK, resp)
}

type infoResponse struct {
	CalendarAvailable bool       `json:"calendar_available"`
	CalendarURL       string     `json:"calendar_url"`
	PlanesURL         string     `json:"planes_url"`
	LastUpdate        *time.Time `json:"last_update"`
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	resp := infoResponse{CalendarURL: "/calendar.png", PlanesURL: "/calendar.bin"}
	if fi, ok := s.outputInfo(); ok {
		mod := fi.ModTime().In(s.loc)
		resp.CalendarAvailable = true
		resp.LastUpdate = &mod
	}
	writeJSON(w, http.StatusOK, resp)
}

type refreshResponse struct {
	Status    string           `json:"status"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Render    *pipeline.Status `json:"render,omitempty"`
}

// handleRefresh renders synchronously. Concurrent refreshes queue behind
// the running one.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	appLog.Info("manual refresh requested", "remote", r.RemoteAddr)

	st, err := s.gen.Generate(r.Context())
	st.Events, st.Weather = nil, nil
	if err != nil {
		appLog.Error("manual refresh failed", err)
		writeJSON(w, http.StatusInternalServerError, refreshResponse{
			Status:    "error",
			Message:   "Failed to refresh calendar",
			Timestamp: time.Now().In(s.loc),
			Render:    &st,
		})
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Status:    "success",
		Message:   "Calendar refreshed successfully",
		Timestamp: time.Now().In(s.loc),
		Render:    &st,
	})
}

func (s *Server) handleDebugLLM(w http.ResponseWriter, r *http.Request) {
	if s.facts == nil {
		writeError(w, http.StatusServiceUnavailable, "fun fact source not configured")
		return
	}
	appLog.Info("testing fun fact model via debug endpoint")
	res := s.facts.Generate(r.Context(), nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"llm_result": res.Text,
		"model":      res.Model,
		"prompt":     res.Prompt,
		"fallback":   res.Fallback,
		"error":      res.Error,
		"timestamp":  time.Now().In(s.loc),
	})
}

// handleDebugEnv shows the effective configuration with secrets masked.
func (s *Server) handleDebugEnv(w http.ResponseWriter, _ *http.Request) {
	env := map[string]string{
		"TIMEZONE":               s.cfg.Timezone,
		"LOCALE":                 s.cfg.Locale,
		"REFRESH_CRON":           s.cfg.RefreshCron,
		"CALENDAR_IMAGE_PATH":    s.cfg.OutputPath,
		"OPENROUTER_API_KEY":     maskKey(s.cfg.FunFact.APIKey),
		"IMAGEROUTER_API_KEY":    maskKey(s.cfg.Illustration.APIKey),
		"ILLUSTRATION_MODE":      s.cfg.Illustration.Mode,
		"SECONDARY_ILLUSTRATION": strconv.FormatBool(s.cfg.Illustration.Secondary),
	}
	for i, cal := range s.cfg.Calendars {
		n := i + 1
		env[fmt.Sprintf("CALENDAR_%d_ID", n)] = cal.ID
		env[fmt.Sprintf("CALENDAR_%d_URL", n)] = ics.RedactURL(cal.URL)
		env[fmt.Sprintf("CALENDAR_%d_SYMBOL", n)] = cal.Symbol
		env[fmt.Sprintf("CALENDAR_%d_NAME", n)] = cal.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"environment_variables": env,
		"timestamp":             time.Now().In(s.loc),
	})
}

// maskKey keeps the first 10 and last 4 characters of long keys.
func maskKey(v string) string {
	switch {
	case v == "":
		return "NOT_SET"
	case len(v) <= 16:
		return "SHORT"
	default:
		return v[:10] + "..." + v[len(v)-4:]
	}
}

type indexData struct {
	Now      time.Time
	Exists   bool
	Modified time.Time
	Next     time.Time
	Busy     bool
	Last     *pipeline.Status
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data := indexData{
		Now:  time.Now().In(s.loc),
		Next: s.nextRefresh(),
		Busy: s.gen.Busy(),
	}
	if fi, ok := s.outputInfo(); ok {
		data.Exists = true
		data.Modified = fi.ModTime().In(s.loc)
	}
	if last, ok := s.gen.Last(); ok {
		data.Last = &last
	}

	var buf bytes.Buffer
	if err := s.index.Execute(&buf, data); err != nil {
		appLog.Error("render index failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) nextRefresh() time.Time {
	if s.NextRefresh == nil {
		return time.Time{}
	}
	next := s.NextRefresh()
	if next.IsZero() {
		return next
	}
	return next.In(s.loc)
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
