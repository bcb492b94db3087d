package weather

import (
	"context"
	"errors"
	"log"
	"math"
	"time"
)

// SummarizeDays computes window aggregates over in-memory day records.
// Absent humidity and pressure values are excluded. ok is false for no days.
func SummarizeDays(days []DayRecord) (sum WindowSummary, ok bool) {
	if len(days) == 0 {
		return WindowSummary{}, false
	}

	var (
		sumTemp, sumWind         float64
		sumHumidity, sumPressure float64
		nHumidity, nPressure     int
	)

	sum.MinTemperature = math.Inf(1)
	sum.MaxTemperature = math.Inf(-1)
	sum.MinWindSpeed = math.Inf(1)
	sum.MaxWindSpeed = math.Inf(-1)

	for _, d := range days {
		sumTemp += d.Temperature
		sumWind += d.WindSpeed
		sum.MinTemperature = math.Min(sum.MinTemperature, d.TemperatureMin)
		sum.MaxTemperature = math.Max(sum.MaxTemperature, d.TemperatureMax)
		sum.MinWindSpeed = math.Min(sum.MinWindSpeed, d.WindSpeed)
		sum.MaxWindSpeed = math.Max(sum.MaxWindSpeed, d.WindSpeed)

		if d.Humidity != nil {
			h := *d.Humidity
			sumHumidity += float64(h)
			nHumidity++
			sum.MinHumidity = minPtr(sum.MinHumidity, h)
			sum.MaxHumidity = maxPtr(sum.MaxHumidity, h)
		}
		if d.Pressure != nil {
			p := *d.Pressure
			sumPressure += float64(p)
			nPressure++
			sum.MinPressure = minPtr(sum.MinPressure, p)
			sum.MaxPressure = maxPtr(sum.MaxPressure, p)
		}
	}

	n := float64(len(days))
	sum.Rows = len(days)
	sum.AvgTemperature = sumTemp / n
	sum.AvgWindSpeed = sumWind / n
	if nHumidity > 0 {
		sum.AvgHumidity = ptr(sumHumidity / float64(nHumidity))
	}
	if nPressure > 0 {
		sum.AvgPressure = ptr(sumPressure / float64(nPressure))
	}
	return sum, true
}

// DominantOf picks the most frequent condition. On equal counts the
// condition seen first in days wins.
func DominantOf(days []DayRecord) Condition {
	counts := make(map[Condition]int)
	var order []Condition
	for _, d := range days {
		if d.Condition == "" {
			continue
		}
		if _, seen := counts[d.Condition]; !seen {
			order = append(order, d.Condition)
		}
		counts[d.Condition]++
	}

	best := ConditionUnknown
	bestCount := 0
	for _, cond := range order {
		if counts[cond] > bestCount {
			best = cond
			bestCount = counts[cond]
		}
	}
	return best
}

// PeriodResult reports the aggregation outcome for one window.
type PeriodResult struct {
	PeriodDays int           `json:"periodDays"`
	OK         bool          `json:"ok"`
	Gap        bool          `json:"gap,omitempty"`
	Outcome    UpsertOutcome `json:"-"`
	Err        error         `json:"-"`
}

// Aggregator recomputes rolling statistics for a location.
type Aggregator struct {
	store Store
}

// NewAggregator creates an Aggregator.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Run computes every configured period as of today. A failing period is
// logged and does not stop the others.
func (a *Aggregator) Run(ctx context.Context, locationID int64, today time.Time) []PeriodResult {
	today = Day(today)
	results := make([]PeriodResult, 0, len(PeriodDays))
	for _, period := range PeriodDays {
		res := PeriodResult{PeriodDays: period}
		outcome, err := a.period(ctx, locationID, today, period)
		switch {
		case errors.Is(err, ErrAggregationGap):
			res.Gap = true
			log.Printf("aggregator: no day records for location=%d in the last %d days", locationID, period)
		case err != nil:
			res.Err = err
			log.Printf("ERROR: aggregator: location=%d period=%dd: %v", locationID, period, err)
		default:
			res.OK = true
			res.Outcome = outcome
		}
		results = append(results, res)
	}
	return results
}

func (a *Aggregator) period(ctx context.Context, locationID int64, today time.Time, period int) (UpsertOutcome, error) {
	from := today.AddDate(0, 0, -period)

	sum, err := a.store.WindowSummary(ctx, locationID, from, today)
	if err != nil {
		return 0, err
	}
	if sum.Rows == 0 {
		return 0, ErrAggregationGap
	}

	dominant, err := a.store.DominantCondition(ctx, locationID, from, today)
	if err != nil {
		return 0, err
	}
	if dominant == "" {
		dominant = ConditionUnknown
	}

	return a.store.UpsertPeriodStat(ctx, BuildPeriodStat(locationID, today, period, sum, dominant))
}

// BuildPeriodStat converts a window summary into a storable stat.
// Humidity and pressure averages are rounded to whole units.
func BuildPeriodStat(locationID int64, statDate time.Time, period int, sum WindowSummary, dominant Condition) PeriodStat {
	stat := PeriodStat{
		LocationID:        locationID,
		StatDate:          Day(statDate),
		PeriodDays:        period,
		AvgTemperature:    round2(sum.AvgTemperature),
		MinTemperature:    round2(sum.MinTemperature),
		MaxTemperature:    round2(sum.MaxTemperature),
		MinHumidity:       sum.MinHumidity,
		MaxHumidity:       sum.MaxHumidity,
		AvgWindSpeed:      round2(sum.AvgWindSpeed),
		MinWindSpeed:      round2(sum.MinWindSpeed),
		MaxWindSpeed:      round2(sum.MaxWindSpeed),
		MinPressure:       sum.MinPressure,
		MaxPressure:       sum.MaxPressure,
		DominantCondition: dominant,
	}
	if sum.AvgHumidity != nil {
		stat.AvgHumidity = ptr(int(math.Round(*sum.AvgHumidity)))
	}
	if sum.AvgPressure != nil {
		stat.AvgPressure = ptr(int(math.Round(*sum.AvgPressure)))
	}
	return stat
}

func minPtr(cur *int, v int) *int {
	if cur == nil || v < *cur {
		return &v
	}
	return cur
}

func maxPtr(cur *int, v int) *int {
	if cur == nil || v > *cur {
		return &v
	}
	return cur
}
