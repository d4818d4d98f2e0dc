package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"inkcal/internal/config"
	"inkcal/internal/funfact"
	"inkcal/internal/ics"
	"inkcal/internal/illustration"
	appLog "inkcal/internal/log"
	"inkcal/internal/pipeline"
	"inkcal/internal/render"
	"inkcal/internal/schedule"
	"inkcal/internal/weather"
	"inkcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	appLog.Info("inkcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv(os.LookupEnv)

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.debug {
		conf.LogLevel = "debug"
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", conf.Timezone)
		loc = time.Local
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"locale", conf.Locale,
		"refresh", conf.RefreshCron,
		"output", conf.OutputPath,
		"calendar_count", len(conf.Calendars),
		"illustration_mode", conf.Illustration.Mode,
		"once", flags.once,
	)

	facts := funfact.NewClient(conf.FunFact.BaseURL, conf.FunFact.APIKey, conf.FunFact.Models, conf.Locale)
	gen := newGenerator(conf, loc, facts)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if _, err := gen.Generate(ctx); err != nil {
			appLog.Error("render failed", err)
			os.Exit(1)
		}
		return
	}

	if _, err := os.Stat(conf.OutputPath); errors.Is(err, fs.ErrNotExist) {
		appLog.Info("no existing calendar found; generating initial calendar")
		if _, err := gen.Generate(ctx); err != nil {
			appLog.Error("initial render failed", err)
		}
	} else {
		appLog.Info("existing calendar found; using current version", "path", conf.OutputPath)
	}

	sched, err := schedule.New(ctx, conf.RefreshCron, loc, func(ctx context.Context) error {
		_, err := gen.Generate(ctx)
		return err
	})
	if err != nil {
		appLog.Error("invalid refresh schedule", err)
		os.Exit(1)
	}
	sched.Start()

	srv := web.NewServer(conf, gen, facts)
	srv.NextRefresh = sched.Next
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("HTTP server failed", err)
		cancel()
	}

	stopCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	sched.Stop(stopCtx)
	appLog.Info("inkcal exiting")
}

// newGenerator wires the collaborators of a render.
func newGenerator(conf *config.Config, loc *time.Location, facts *funfact.Client) *pipeline.Generator {
	feeds := make([]ics.Feed, 0, len(conf.Calendars))
	for _, cal := range conf.Calendars {
		if cal.URL == "" {
			continue
		}
		feeds = append(feeds, ics.Feed{ID: cal.ID, URL: cal.URL, Name: cal.Name, Symbol: cal.Symbol})
	}

	renderer := render.NewRenderer(
		render.LocaleFor(conf.Locale),
		render.DiscoverFonts(conf.Fonts.Regular, conf.Fonts.Bold),
	)

	secondary := ""
	if conf.Illustration.Secondary {
		secondary = conf.Illustration.SecondaryPath
	}

	return &pipeline.Generator{
		Events: &ics.Source{
			Feeds:   feeds,
			Fetcher: ics.NewFetcher(conf.CacheDir, nil),
			Loc:     loc,
			Days:    renderer.Layout.Days,
		},
		Weather: weather.NewClient(conf.Weather.BaseURL, conf.Weather.Latitude, conf.Weather.Longitude, loc.String()),
		Facts:   facts,
		Illustrations: illustration.NewGenerator(
			conf.Illustration.BaseURL,
			conf.Illustration.APIKey,
			conf.Illustration.Models,
			illustration.Mode(conf.Illustration.Mode),
			filepath.Dir(conf.OutputPath),
			conf.Illustration.FallbackPath,
		),
		Renderer:      renderer,
		OutputPath:    conf.OutputPath,
		SecondaryPath: secondary,
		Loc:           loc,
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Render one calendar and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
