package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-history/internal/common"
	"github.com/i474232898/weather-history/internal/weather"
)

// GoogleGeocoder implements weather.Geocoder with the Google Maps Geocoding
// API. The canonical name and country come from a reverse lookup of the
// forward result, so "NYC" and "New York" map to the same stored location.
type GoogleGeocoder struct {
	name    string
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
}

// NewGoogleGeocoder configures the package-level key of kelvins/geocoder.
// Only one Google-backed geocoder should exist per process.
func NewGoogleGeocoder(apiKey string, limiter *rate.Limiter) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("google geocoder: api key is not configured")
	}
	if geocoder.ApiKey != apiKey {
		geocoder.ApiKey = apiKey
	}
	return &GoogleGeocoder{
		name:    "google-geocoding",
		limiter: limiter,
		circuit: newCircuitBreaker("google-geocoding"),
	}, nil
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (weather.GeoMatch, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return weather.GeoMatch{}, err
		}
	}

	// kelvins/geocoder takes no context, so the lookup runs aside and the
	// caller stops waiting once ctx is done.
	type outcome struct {
		match weather.GeoMatch
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		// The library indexes the first result without checking for one.
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: malformed response: %v", weather.ErrNoMatch, r)}
			}
		}()
		result, err := g.circuit.Execute(func() (interface{}, error) {
			loc, err := geocoder.Geocoding(geocoder.Address{City: query})
			if err != nil {
				return nil, err
			}
			addrs, err := geocoder.GeocodingReverse(loc)
			if err != nil {
				return nil, err
			}
			return googleMatch(query, loc, addrs), nil
		})
		if err != nil {
			done <- outcome{err: err}
			return
		}
		done <- outcome{match: result.(weather.GeoMatch)}
	}()

	select {
	case <-ctx.Done():
		return weather.GeoMatch{}, fmt.Errorf("%s: %w", g.name, ctx.Err())
	case out := <-done:
		if out.err != nil {
			if common.HasAny(out.err.Error(), "ZERO_RESULTS", "no results") {
				return weather.GeoMatch{}, weather.ErrNoMatch
			}
			return weather.GeoMatch{}, fmt.Errorf("%s: %w", g.name, out.err)
		}
		return out.match, nil
	}
}

// googleMatch picks the first reverse result naming a city; the query is kept
// as the name when no result does.
func googleMatch(query string, loc geocoder.Location, addrs []geocoder.Address) weather.GeoMatch {
	m := weather.GeoMatch{
		Name:      query,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
	for _, a := range addrs {
		if a.Country != "" && m.Country == "" {
			m.Country = a.Country
		}
		if a.City != "" {
			m.Name = a.City
			m.Country = a.Country
			break
		}
	}
	return m
}
