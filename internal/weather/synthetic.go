package weather

import (
	"context"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	syntheticMinTemp = -30.0
	syntheticMaxTemp = 50.0
)

type season int

const (
	winter season = iota
	spring
	summer
	fall
)

var syntheticConditions = []Condition{
	ConditionClear,
	ConditionClouds,
	ConditionRain,
	ConditionSnow,
	ConditionThunderstorm,
}

var (
	freezingWeights = []float64{0.2, 0.2, 0.1, 0.4, 0.1}
	hotWeights      = []float64{0.3, 0.3, 0.2, 0, 0.2}
	balancedWeights = []float64{0.3, 0.3, 0.2, 0.1, 0.1}
)

var syntheticDescriptions = map[Condition][]string{
	ConditionClear:        {"clear sky", "sunny", "mostly clear"},
	ConditionClouds:       {"few clouds", "scattered clouds", "overcast"},
	ConditionRain:         {"light rain", "moderate rain", "heavy rain", "showers"},
	ConditionSnow:         {"light snow", "moderate snow", "heavy snow", "blizzard"},
	ConditionThunderstorm: {"thunderstorm", "thunderstorm with rain", "severe thunderstorm"},
}

// SyntheticSource generates a plausible random daily series shaped by the
// hemisphere, the current season and distance from the equator.
// Every invocation yields a different series.
type SyntheticSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSyntheticSource creates a SyntheticSource. A nil rng is seeded from the
// clock; a nil now defaults to time.Now.
func NewSyntheticSource(rng *rand.Rand, now func() time.Time) *SyntheticSource {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &SyntheticSource{rng: rng, now: now}
}

func (s *SyntheticSource) Name() string {
	return "synthetic"
}

// Daily yields exactly one day per calendar date in [start, end].
// Longitude does not influence the series.
func (s *SyntheticSource) Daily(ctx context.Context, lat, _ float64, start, end time.Time) (iter.Seq[RawDay], error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("synthetic: end %s before start %s", end.Format(DateLayout), start.Format(DateLayout))
	}

	northern := lat > 0
	base, spread := seasonalBase(seasonOf(s.now().Month(), northern), northern)
	base -= math.Abs(lat) / 90 * 10

	return func(yield func(RawDay) bool) {
		var prev *float64
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if ctx.Err() != nil {
				return
			}
			day := s.nextDay(d, base, spread, prev)
			prev = day.Temperature
			if !yield(day) {
				return
			}
		}
	}, nil
}

func (s *SyntheticSource) nextDay(date time.Time, base, spread float64, prev *float64) RawDay {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mean float64
	if prev == nil {
		mean = base + s.uniform(-spread/2, spread/2)
	} else {
		mean = *prev + s.uniform(-3, 3)
	}
	mean = clamp(mean, syntheticMinTemp, syntheticMaxTemp)

	tMin := mean - s.uniform(1, 5)
	tMax := mean + s.uniform(1, 5)
	feels := mean + s.uniform(-2, 2)

	humidity := int(40 + (mean/50)*40 + s.uniform(-10, 10))
	humidity = max(10, min(100, humidity))
	pressure := int(1013 + s.uniform(-15, 15))

	wind := s.uniform(0, 20)
	direction := s.rng.IntN(360)

	weights := balancedWeights
	switch {
	case tMin < 0:
		weights = freezingWeights
	case mean > 30:
		weights = hotWeights
	}
	cond := s.pick(weights)
	phrases := syntheticDescriptions[cond]
	desc := phrases[s.rng.IntN(len(phrases))]

	return RawDay{
		Date:           date.Format(DateLayout),
		Temperature:    ptr(round1(mean)),
		TemperatureMin: ptr(round1(tMin)),
		TemperatureMax: ptr(round1(tMax)),
		FeelsLike:      ptr(round1(feels)),
		Pressure:       &pressure,
		Humidity:       &humidity,
		WindSpeed:      ptr(round1(wind)),
		WindDirection:  &direction,
		Condition:      cond,
		Description:    desc,
	}
}

func (s *SyntheticSource) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// pick draws a condition using weights aligned with syntheticConditions.
func (s *SyntheticSource) pick(weights []float64) Condition {
	var total float64
	for _, w := range weights {
		total += w
	}
	x := s.rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return syntheticConditions[i]
		}
		x -= w
	}
	// Float rounding can leave x marginally positive; take the last weighted entry.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return syntheticConditions[i]
		}
	}
	return ConditionClear
}

// seasonOf uses 3-month meteorological seasons, swapped south of the equator.
func seasonOf(m time.Month, northern bool) season {
	var s season
	switch m {
	case time.December, time.January, time.February:
		s = winter
	case time.March, time.April, time.May:
		s = spring
	case time.June, time.July, time.August:
		s = summer
	default:
		s = fall
	}
	if northern {
		return s
	}
	switch s {
	case winter:
		return summer
	case spring:
		return fall
	case summer:
		return winter
	default:
		return spring
	}
}

func seasonalBase(s season, northern bool) (base, spread float64) {
	switch s {
	case winter:
		if northern {
			return 5, 10
		}
		return 15, 10
	case summer:
		if northern {
			return 25, 10
		}
		return 30, 10
	default:
		if northern {
			return 15, 10
		}
		return 20, 10
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr[T any](v T) *T {
	return &v
}
