package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-history/internal/weather"
)

// DefaultGeocodingURL is the Open-Meteo place search endpoint. It needs no API key.
const DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteoGeocoder implements weather.Geocoder using Open-Meteo place search.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(cfg HTTPClientConfig, baseURL string) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &OpenMeteoGeocoder{
		name:    "open-meteo-geocoding",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("open-meteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return g.name
}

// Geocode returns the first search result for query.
func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, query string) (weather.GeoMatch, error) {
	values := url.Values{}
	values.Set("name", query)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")
	u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := getJSON(ctx, g.httpCfg, g.circuit, u, &payload); err != nil {
		return weather.GeoMatch{}, fmt.Errorf("%s: %w", g.name, err)
	}
	if len(payload.Results) == 0 {
		return weather.GeoMatch{}, weather.ErrNoMatch
	}

	r := payload.Results[0]
	return weather.GeoMatch{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, nil
}
