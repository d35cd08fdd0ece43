// Package weather fetches current conditions and a seven day forecast from
// the Open-Meteo geocoding and forecast APIs.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/livestock/internal/config"
)

// ForecastDays is the number of daily entries returned.
const ForecastDays = 7

// ErrCityNotFound is returned when the geocoder knows no place by that name.
var ErrCityNotFound = errors.New("city not found")

// Client exposes the forecast lookup used by the environment routes.
type Client interface {
	Forecast(ctx context.Context, city string) (*Forecast, error)
}

// Forecast mirrors the response of GET /api/environment/forecast/:city.
type Forecast struct {
	City     string    `json:"city"`
	Current  Current   `json:"current"`
	Forecast []DayView `json:"forecast"`
}

type Current struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Condition   string  `json:"condition"`
	WindSpeed   float64 `json:"windSpeed"`
}

type DayView struct {
	Date        time.Time   `json:"date"`
	Temperature Temperature `json:"temperature"`
	Condition   string      `json:"condition"`
	Humidity    float64     `json:"humidity"`
	Rainfall    float64     `json:"rainfall"`
}

type Temperature struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	geocoding *resty.Client
	forecast  *resty.Client
}

// NewClient builds an Open-Meteo client from configuration.
func NewClient(cfg config.WeatherConfig) *APIClient {
	newResty := func(base string) *resty.Client {
		return resty.New().
			SetBaseURL(strings.TrimSuffix(base, "/")).
			SetHeader("Accept", "application/json").
			SetTimeout(cfg.Timeout)
	}
	return &APIClient{
		geocoding: newResty(cfg.GeocodingURL),
		forecast:  newResty(cfg.ForecastURL),
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		Time          []string  `json:"time"`
		WeatherCode   []int     `json:"weather_code"`
		TemperatureHi []float64 `json:"temperature_2m_max"`
		TemperatureLo []float64 `json:"temperature_2m_min"`
		Precipitation []float64 `json:"precipitation_sum"`
		Humidity      []float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

// apiError is the Open-Meteo error payload.
type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Forecast geocodes city and fetches its conditions.
func (c *APIClient) Forecast(ctx context.Context, city string) (*Forecast, error) {
	geo := new(geocodingResponse)
	if err := get(ctx, c.geocoding, "/search", map[string]string{
		"name":     city,
		"count":    "1",
		"language": "en",
		"format":   "json",
	}, geo); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	place := geo.Results[0]

	raw := new(forecastResponse)
	if err := get(ctx, c.forecast, "/forecast", map[string]string{
		"latitude":      strconv.FormatFloat(place.Latitude, 'f', -1, 64),
		"longitude":     strconv.FormatFloat(place.Longitude, 'f', -1, 64),
		"current":       "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m",
		"daily":         "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,relative_humidity_2m_mean",
		"forecast_days": strconv.Itoa(ForecastDays),
		"timezone":      "UTC",
	}, raw); err != nil {
		return nil, fmt.Errorf("forecast %q: %w", city, err)
	}

	out := &Forecast{
		City: place.Name,
		Current: Current{
			Temperature: raw.Current.Temperature,
			Humidity:    raw.Current.Humidity,
			Condition:   Condition(raw.Current.WeatherCode),
			WindSpeed:   raw.Current.WindSpeed,
		},
		Forecast: make([]DayView, 0, len(raw.Daily.Time)),
	}
	d := raw.Daily
	for i, day := range d.Time {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("forecast %q: bad date %q: %w", city, day, err)
		}
		out.Forecast = append(out.Forecast, DayView{
			Date:        date,
			Temperature: Temperature{High: at(d.TemperatureHi, i), Low: at(d.TemperatureLo, i)},
			Condition:   Condition(int(at(toFloats(d.WeatherCode), i))),
			Humidity:    at(d.Humidity, i),
			Rainfall:    at(d.Precipitation, i),
		})
	}
	return out, nil
}

func get(ctx context.Context, client *resty.Client, path string, params map[string]string, result any) error {
	apiErr := new(apiError)
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		SetError(apiErr).
		Get(path)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("open-meteo error: code=%d, reason=%s", resp.StatusCode(), apiErr.Reason)
	}
	return nil
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Condition maps a WMO weather code onto the weather conditions recorded in
// environmental data.
func Condition(code int) string {
	switch {
	case code <= 1:
		return "Sunny"
	case code <= 3:
		return "Cloudy"
	case code == 45 || code == 48:
		return "Foggy"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "Snowy"
	case code >= 95:
		return "Stormy"
	case code >= 51 && code <= 82:
		return "Rainy"
	}
	return "Cloudy"
}
