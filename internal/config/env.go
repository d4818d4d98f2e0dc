package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays environment variables on top of the file config.
// lookup is usually os.LookupEnv; tests pass a map-backed function.
//
// Calendars are read from CALENDAR_1_URL, CALENDAR_1_ID, CALENDAR_1_SYMBOL,
// CALENDAR_1_NAME, CALENDAR_2_URL, ... until the first missing URL. When at
// least one is present they replace the calendars from the file.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				*dst = f
			}
		}
	}

	str("LISTEN", &c.Listen)
	str("TIMEZONE", &c.Timezone)
	str("LOCALE", &c.Locale)
	str("REFRESH_CRON", &c.RefreshCron)
	str("CALENDAR_IMAGE_PATH", &c.OutputPath)
	str("LOG_LEVEL", &c.LogLevel)

	float("WEATHER_LATITUDE", &c.Weather.Latitude)
	float("WEATHER_LONGITUDE", &c.Weather.Longitude)

	str("OPENROUTER_API_KEY", &c.FunFact.APIKey)
	str("IMAGEROUTER_API_KEY", &c.Illustration.APIKey)
	str("ILLUSTRATION_MODE", &c.Illustration.Mode)
	str("FALLBACK_ILLUSTRATION", &c.Illustration.FallbackPath)
	str("SECONDARY_ILLUSTRATION_PATH", &c.Illustration.SecondaryPath)
	if v, ok := lookup("SECONDARY_ILLUSTRATION"); ok {
		// Only an explicit "False" disables it.
		c.Illustration.Secondary = strings.TrimSpace(v) != "False"
	}

	str("FONT_REGULAR", &c.Fonts.Regular)
	str("FONT_BOLD", &c.Fonts.Bold)

	var cals []CalendarConfig
	for i := 1; ; i++ {
		url, ok := lookup(fmt.Sprintf("CALENDAR_%d_URL", i))
		if !ok || strings.TrimSpace(url) == "" {
			break
		}
		cal := CalendarConfig{
			URL:    strings.TrimSpace(url),
			Symbol: "●",
			Name:   fmt.Sprintf("Calendar %d", i),
		}
		str(fmt.Sprintf("CALENDAR_%d_ID", i), &cal.ID)
		str(fmt.Sprintf("CALENDAR_%d_SYMBOL", i), &cal.Symbol)
		str(fmt.Sprintf("CALENDAR_%d_NAME", i), &cal.Name)
		cals = append(cals, cal)
	}
	if len(cals) > 0 {
		c.Calendars = cals
	}

	c.Normalize()
}
