package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/i474232898/weather-history/internal/weather"
)

func TestOpenMeteoGeocoder_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "Cape Town" {
			t.Errorf("name = %q, want Cape Town", got)
		}
		if got := r.URL.Query().Get("count"); got != "1" {
			t.Errorf("count = %q, want 1", got)
		}
		w.Write([]byte(`{"results":[{"name":"Cape Town","country":"South Africa","latitude":-33.92584,"longitude":18.42322}]}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(testHTTPConfig(srv.Client()), srv.URL)
	got, err := g.Geocode(context.Background(), "Cape Town")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	want := weather.GeoMatch{Name: "Cape Town", Country: "South Africa", Latitude: -33.92584, Longitude: 18.42322}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Geocode diff (-want, +got): %v", diff)
	}
}

func TestOpenMeteoGeocoder_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generationtime_ms":0.5}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(testHTTPConfig(srv.Client()), srv.URL)
	if _, err := g.Geocode(context.Background(), "Atlantis"); !errors.Is(err, weather.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestOpenMeteoGeocoder_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(testHTTPConfig(srv.Client()), srv.URL)
	_, err := g.Geocode(context.Background(), "London")
	if err == nil || errors.Is(err, weather.ErrNoMatch) {
		t.Fatalf("expected a transport error, got %v", err)
	}
	if !errors.Is(err, errServerError) {
		t.Errorf("error %v does not wrap errServerError", err)
	}
}

func TestDoRequestWithResilience_InvalidConfig(t *testing.T) {
	cb := newCircuitBreaker("test")
	build := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, "http://invalid", nil)
	}

	if _, err := doRequestWithResilience(context.Background(), HTTPClientConfig{}, cb, build); !errors.Is(err, errNoHTTPClient) {
		t.Errorf("nil client: got %v, want errNoHTTPClient", err)
	}
	cfg := HTTPClientConfig{Client: http.DefaultClient}
	if _, err := doRequestWithResilience(context.Background(), cfg, cb, build); !errors.Is(err, errInvalidConfig) {
		t.Errorf("zero backoff: got %v, want errInvalidConfig", err)
	}
}

func TestBackoffDelay(t *testing.T) {
	b := BackoffConfig{InitialInterval: 100 * time.Millisecond, MaxInterval: 300 * time.Millisecond}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for attempt, w := range want {
		if got := b.delay(attempt); got != w {
			t.Errorf("delay(%d) = %v, want %v", attempt, got, w)
		}
	}
}
