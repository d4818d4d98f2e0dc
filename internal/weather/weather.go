// Package weather fetches the daily forecast from Open-Meteo.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appLog "inkcal/internal/log"
	"inkcal/internal/model"
)

// ErrUnavailable is returned whenever no usable forecast could be obtained.
// Callers substitute a fallback.
var ErrUnavailable = errors.New("weather: forecast unavailable")

// Client queries the Open-Meteo daily forecast endpoint.
type Client struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	// Timezone is the IANA zone the daily buckets are computed in. Empty
	// or "Local" lets Open-Meteo use the zone of the coordinates.
	Timezone string

	HTTP *http.Client
}

// NewClient returns a client with a 10s HTTP timeout.
func NewClient(baseURL string, lat, lon float64, tz string) *Client {
	return &Client{
		BaseURL:   baseURL,
		Latitude:  lat,
		Longitude: lon,
		Timezone:  tz,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

// forecastZone maps zone names Open-Meteo does not know to "auto".
func forecastZone(tz string) string {
	switch tz {
	case "", "Local":
		return "auto"
	}
	return tz
}

type dailyResponse struct {
	Daily struct {
		// Days without data come back as null.
		WeatherCode []*int     `json:"weathercode"`
		TempMin     []*float64 `json:"temperature_2m_min"`
		TempMax     []*float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

// Forecast returns one DayWeather per day for the next days days, starting
// today. Any failure, including a response covering fewer days, is reported
// as an error wrapping ErrUnavailable.
func (c *Client) Forecast(ctx context.Context, days int) ([]model.DayWeather, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode")
	q.Set("timezone", forecastZone(c.Timezone))
	q.Set("forecast_days", strconv.Itoa(days))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var body dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	d := body.Daily
	if len(d.WeatherCode) < days || len(d.TempMin) < days || len(d.TempMax) < days {
		return nil, fmt.Errorf("%w: %d days in response, want %d", ErrUnavailable, len(d.WeatherCode), days)
	}

	out := make([]model.DayWeather, days)
	for i := range out {
		if d.WeatherCode[i] == nil || d.TempMin[i] == nil || d.TempMax[i] == nil {
			return nil, fmt.Errorf("%w: day %d has null values", ErrUnavailable, i)
		}
		out[i] = model.DayWeather{
			WeatherCode: *d.WeatherCode[i],
			MinTemp:     int(math.RoundToEven(*d.TempMin[i])),
			MaxTemp:     int(math.RoundToEven(*d.TempMax[i])),
		}
	}
	appLog.Debug("weather forecast", "days", days, "today_code", out[0].WeatherCode)
	return out, nil
}
