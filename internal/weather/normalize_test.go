package weather

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func completeRawDay() RawDay {
	return RawDay{
		Date:           "2024-03-05",
		Temperature:    ptr(12.346),
		TemperatureMin: ptr(8.0),
		TemperatureMax: ptr(16.999),
		FeelsLike:      ptr(11.111),
		Pressure:       ptr(1012),
		Humidity:       ptr(104),
		WindSpeed:      ptr(3.456),
		WindDirection:  ptr(-90),
		Condition:      ConditionRain,
		Description:    "  Light rain ",
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize(completeRawDay())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := DayRecord{
		Date:           time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Temperature:    12.35,
		TemperatureMin: 8,
		TemperatureMax: 17,
		FeelsLike:      ptr(11.11),
		Pressure:       ptr(1012),
		Humidity:       ptr(100),
		WindSpeed:      3.46,
		WindDirection:  270,
		Condition:      ConditionRain,
		Description:    "Light rain",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize diff (-want, +got): %v", diff)
	}
}

func TestNormalize_OptionalFieldsAbsent(t *testing.T) {
	raw := completeRawDay()
	raw.FeelsLike, raw.Pressure, raw.Humidity = nil, nil, nil

	got, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.FeelsLike != nil || got.Pressure != nil || got.Humidity != nil {
		t.Errorf("expected absent optional fields, got %+v", got)
	}
}

func TestNormalize_MissingFields(t *testing.T) {
	raw := completeRawDay()
	raw.Temperature = nil
	raw.WindDirection = nil

	_, err := Normalize(raw)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	for _, field := range []string{"temperature", "wind_direction"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name %s", err, field)
		}
	}
}

func TestNormalize_DateFormats(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, date := range []string{"2024-03-05", "2024-03-05T18:30:00Z"} {
		raw := completeRawDay()
		raw.Date = date
		got, err := Normalize(raw)
		if err != nil {
			t.Errorf("Normalize(date=%q): %v", date, err)
			continue
		}
		if !got.Date.Equal(want) {
			t.Errorf("Normalize(date=%q).Date = %v, want %v", date, got.Date, want)
		}
	}

	raw := completeRawDay()
	raw.Date = "05/03/2024"
	if _, err := Normalize(raw); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
