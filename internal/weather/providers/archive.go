package providers

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-history/internal/weather"
)

// DefaultArchiveURL is the Open-Meteo historical weather endpoint.
const DefaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

// defaultWindSpeed (m/s) substitutes a missing daily wind speed.
const defaultWindSpeed = 5.0

var archiveDailyFields = []string{
	"temperature_2m_mean",
	"temperature_2m_min",
	"temperature_2m_max",
	"apparent_temperature_max",
	"apparent_temperature_min",
	"precipitation_sum",
	"rain_sum",
	"snowfall_sum",
	"wind_speed_10m_max",
	"wind_direction_10m_dominant",
	"relative_humidity_2m_max",
	"relative_humidity_2m_min",
	"pressure_msl_max",
	"pressure_msl_min",
}

var errNoDailySeries = errors.New("response has no daily series")

// ArchiveSource implements weather.DailySeriesSource for the Open-Meteo archive API.
type ArchiveSource struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker

	mu  sync.Mutex
	rng *rand.Rand
}

// NewArchiveSource creates an ArchiveSource. An empty baseURL selects the
// public endpoint; a nil rng is seeded from the clock.
func NewArchiveSource(cfg HTTPClientConfig, baseURL string, rng *rand.Rand) *ArchiveSource {
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &ArchiveSource{
		name:    "open-meteo-archive",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("open-meteo-archive"),
		rng:     rng,
	}
}

func (s *ArchiveSource) Name() string {
	return s.name
}

type archivePayload struct {
	Daily *archiveDaily `json:"daily"`
}

type archiveDaily struct {
	Time          []string   `json:"time"`
	TempMean      []*float64 `json:"temperature_2m_mean"`
	TempMin       []*float64 `json:"temperature_2m_min"`
	TempMax       []*float64 `json:"temperature_2m_max"`
	ApparentMax   []*float64 `json:"apparent_temperature_max"`
	ApparentMin   []*float64 `json:"apparent_temperature_min"`
	Precipitation []*float64 `json:"precipitation_sum"`
	Rain          []*float64 `json:"rain_sum"`
	Snowfall      []*float64 `json:"snowfall_sum"`
	WindSpeed     []*float64 `json:"wind_speed_10m_max"`
	WindDirection []*float64 `json:"wind_direction_10m_dominant"`
	HumidityMax   []*float64 `json:"relative_humidity_2m_max"`
	HumidityMin   []*float64 `json:"relative_humidity_2m_min"`
	PressureMax   []*float64 `json:"pressure_msl_max"`
	PressureMin   []*float64 `json:"pressure_msl_min"`
}

// Daily fetches the whole range in one request. Transport and decode failures,
// and responses without a daily series, are returned as *weather.FetchError.
// Days lacking mean, min or max temperature are dropped from the sequence.
func (s *ArchiveSource) Daily(ctx context.Context, lat, lon float64, start, end time.Time) (iter.Seq[weather.RawDay], error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("start_date", start.Format(weather.DateLayout))
	values.Set("end_date", end.Format(weather.DateLayout))
	values.Set("daily", strings.Join(archiveDailyFields, ","))
	values.Set("wind_speed_unit", "ms")
	values.Set("timezone", "auto")
	u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())

	var payload archivePayload
	if err := getJSON(ctx, s.httpCfg, s.circuit, u, &payload); err != nil {
		return nil, &weather.FetchError{Source: s.name, Err: err}
	}
	if payload.Daily == nil || len(payload.Daily.Time) == 0 {
		return nil, &weather.FetchError{Source: s.name, Err: errNoDailySeries}
	}

	daily := payload.Daily
	return func(yield func(weather.RawDay) bool) {
		for i := range daily.Time {
			day, ok := s.dayAt(daily, i)
			if !ok {
				continue
			}
			if !yield(day) {
				return
			}
		}
	}, nil
}

// dayAt applies per-day fallbacks using only index i.
func (s *ArchiveSource) dayAt(d *archiveDaily, i int) (weather.RawDay, bool) {
	mean, tMin, tMax := at(d.TempMean, i), at(d.TempMin, i), at(d.TempMax, i)
	if mean == nil || tMin == nil || tMax == nil {
		return weather.RawDay{}, false
	}

	day := weather.RawDay{
		Date:           d.Time[i],
		Temperature:    mean,
		TemperatureMin: tMin,
		TemperatureMax: tMax,
		FeelsLike:      mean,
	}

	if hi, lo := at(d.ApparentMax, i), at(d.ApparentMin, i); hi != nil && lo != nil {
		feels := (*hi + *lo) / 2
		day.FeelsLike = &feels
	}
	if hi, lo := at(d.HumidityMax, i), at(d.HumidityMin, i); hi != nil && lo != nil {
		h := int((*hi + *lo) / 2)
		day.Humidity = &h
	}
	if hi, lo := at(d.PressureMax, i), at(d.PressureMin, i); hi != nil && lo != nil {
		p := int((*hi + *lo) / 2)
		day.Pressure = &p
	}

	wind := defaultWindSpeed
	if v := at(d.WindSpeed, i); v != nil {
		wind = *v
	}
	day.WindSpeed = &wind

	var direction int
	if v := at(d.WindDirection, i); v != nil {
		direction = int(math.Round(*v)) % 360
	} else {
		s.mu.Lock()
		direction = s.rng.IntN(360)
		s.mu.Unlock()
	}
	day.WindDirection = &direction

	precipitation := valueOr(at(d.Precipitation, i), 0)
	rain := valueOr(at(d.Rain, i), 0)
	snowfall := valueOr(at(d.Snowfall, i), 0)
	day.Condition = weather.ClassifyCondition(precipitation, rain, snowfall)
	day.Description = weather.DescribeConditions(precipitation, rain, snowfall)

	return day, true
}

func at(series []*float64, i int) *float64 {
	if i < 0 || i >= len(series) {
		return nil
	}
	return series[i]
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
