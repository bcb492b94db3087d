package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-history/internal/weather"
)

const googleTestKey = "test-key"

var googleAPIOnce sync.Once

// useGoogleAPI points kelvins/geocoder at a local fake of the Geocoding API.
// The library reads its URL from a package variable, so it is set once and
// shared by every test; lookups abandoned on cancellation may still read it.
func useGoogleAPI(t *testing.T) {
	t.Helper()
	googleAPIOnce.Do(func() {
		srv := httptest.NewServer(http.HandlerFunc(fakeGoogleAPI))
		geocoder.ApiUrl = srv.URL + "/json?"
	})
}

func fakeGoogleAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("key") != googleTestKey {
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
		return
	}
	if latlng := q.Get("latlng"); latlng != "" {
		if !strings.HasPrefix(latlng, "40.7128") {
			w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
			return
		}
		w.Write([]byte(`{"status":"OK","results":[
			{"address_components":[{"long_name":"United States","types":["country","political"]}],"types":["country"]},
			{"address_components":[
				{"long_name":"New York","types":["locality","political"]},
				{"long_name":"United States","types":["country","political"]}
			],"types":["locality"]}
		]}`))
		return
	}

	switch q.Get("address") {
	case "NYC":
		w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":40.7128,"lng":-74.006}},"types":["locality"]}]}`))
	case "Stalled":
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	case "Hollow":
		w.Write([]byte(`{"status":"OK","results":[]}`))
	default:
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}
}

func TestNewGoogleGeocoder_RequiresKey(t *testing.T) {
	if _, err := NewGoogleGeocoder("", nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestGoogleGeocoder_Geocode(t *testing.T) {
	useGoogleAPI(t)
	g, err := NewGoogleGeocoder(googleTestKey, nil)
	if err != nil {
		t.Fatalf("NewGoogleGeocoder: %v", err)
	}

	got, err := g.Geocode(context.Background(), "NYC")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	want := weather.GeoMatch{Name: "New York", Country: "United States", Latitude: 40.7128, Longitude: -74.006}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Geocode diff (-want, +got): %v", diff)
	}
}

func TestGoogleGeocoder_NoMatch(t *testing.T) {
	useGoogleAPI(t)
	g, err := NewGoogleGeocoder(googleTestKey, nil)
	if err != nil {
		t.Fatalf("NewGoogleGeocoder: %v", err)
	}

	for _, query := range []string{"Atlantis", "Hollow"} {
		if _, err := g.Geocode(context.Background(), query); !errors.Is(err, weather.ErrNoMatch) {
			t.Errorf("Geocode(%q): got %v, want ErrNoMatch", query, err)
		}
	}
}

func TestGoogleGeocoder_StopsOnContextDone(t *testing.T) {
	useGoogleAPI(t)
	g, err := NewGoogleGeocoder(googleTestKey, nil)
	if err != nil {
		t.Fatalf("NewGoogleGeocoder: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = g.Geocode(ctx, "Stalled")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Geocode returned %v after the deadline", elapsed)
	}
}

func TestGoogleMatch(t *testing.T) {
	loc := geocoder.Location{Latitude: 40.7128, Longitude: -74.006}

	tests := []struct {
		name  string
		addrs []geocoder.Address
		want  weather.GeoMatch
	}{
		{
			name: "city from reverse lookup",
			addrs: []geocoder.Address{
				{Country: "United States"},
				{City: "New York", Country: "United States"},
			},
			want: weather.GeoMatch{Name: "New York", Country: "United States", Latitude: 40.7128, Longitude: -74.006},
		},
		{
			name:  "no city keeps query",
			addrs: []geocoder.Address{{Country: "United States"}},
			want:  weather.GeoMatch{Name: "NYC", Country: "United States", Latitude: 40.7128, Longitude: -74.006},
		},
		{
			name: "empty reverse result",
			want: weather.GeoMatch{Name: "NYC", Latitude: 40.7128, Longitude: -74.006},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := googleMatch("NYC", loc, tt.addrs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("googleMatch diff (-want, +got): %v", diff)
			}
		})
	}
}
