package weather

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"
	"time"
)

type stubSource struct {
	name string
	days []RawDay
	err  error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Daily(context.Context, float64, float64, time.Time, time.Time) (iter.Seq[RawDay], error) {
	if s.err != nil {
		return nil, s.err
	}
	return slices.Values(s.days), nil
}

func TestFallbackSource(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	primary := stubSource{name: "archive", days: []RawDay{{Date: "2024-05-01"}}}
	fallback := stubSource{name: "synthetic", days: []RawDay{{Date: "2024-05-01"}, {Date: "2024-05-02"}}}

	tests := []struct {
		name       string
		primary    DailySeriesSource
		wantSource string
		wantDays   int
	}{
		{"primary ok", primary, "archive", 1},
		{"primary fails", stubSource{name: "archive", err: &FetchError{Source: "archive", Err: errors.New("503")}}, "synthetic", 2},
		{"no primary", nil, "synthetic", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := FallbackSource{Primary: tt.primary, Fallback: fallback}
			series, err := src.Daily(context.Background(), 1, 2, start, start.AddDate(0, 0, 1))
			if err != nil {
				t.Fatalf("Daily: %v", err)
			}
			if series.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", series.Source, tt.wantSource)
			}
			n := 0
			for range series.Days {
				n++
			}
			if n != tt.wantDays {
				t.Errorf("got %d days, want %d", n, tt.wantDays)
			}
		})
	}
}

func TestFallbackSource_FallbackError(t *testing.T) {
	src := FallbackSource{
		Primary:  stubSource{name: "archive", err: errors.New("down")},
		Fallback: stubSource{name: "synthetic", err: errors.New("bad range")},
	}
	if _, err := src.Daily(context.Background(), 0, 0, time.Now(), time.Now()); err == nil {
		t.Fatal("expected the fallback error to surface")
	}
}
