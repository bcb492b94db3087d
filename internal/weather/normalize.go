package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Normalize coerces a raw day into a storable DayRecord. It derives nothing:
// temperatures, wind speed and feels-like are kept to two decimals, wind
// direction is folded into [0, 359], humidity into [0, 100], and the date is
// reduced to its UTC calendar day.
func Normalize(raw RawDay) (DayRecord, error) {
	var missing []string
	if raw.Date == "" {
		missing = append(missing, "date")
	}
	if raw.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if raw.TemperatureMin == nil {
		missing = append(missing, "temperature_min")
	}
	if raw.TemperatureMax == nil {
		missing = append(missing, "temperature_max")
	}
	if raw.WindSpeed == nil {
		missing = append(missing, "wind_speed")
	}
	if raw.WindDirection == nil {
		missing = append(missing, "wind_direction")
	}
	if raw.Condition == "" {
		missing = append(missing, "weather_condition")
	}
	if strings.TrimSpace(raw.Description) == "" {
		missing = append(missing, "weather_description")
	}
	if len(missing) > 0 {
		return DayRecord{}, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	date, err := parseDate(raw.Date)
	if err != nil {
		return DayRecord{}, err
	}

	rec := DayRecord{
		Date:           date,
		Temperature:    round2(*raw.Temperature),
		TemperatureMin: round2(*raw.TemperatureMin),
		TemperatureMax: round2(*raw.TemperatureMax),
		WindSpeed:      round2(*raw.WindSpeed),
		WindDirection:  ((*raw.WindDirection % 360) + 360) % 360,
		Condition:      raw.Condition,
		Description:    strings.TrimSpace(raw.Description),
		Pressure:       raw.Pressure,
	}
	if raw.FeelsLike != nil {
		rec.FeelsLike = ptr(round2(*raw.FeelsLike))
	}
	if raw.Humidity != nil {
		rec.Humidity = ptr(max(0, min(100, *raw.Humidity)))
	}
	return rec, nil
}

// parseDate accepts an ISO calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
