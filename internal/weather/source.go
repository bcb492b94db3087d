package weather

import (
	"context"
	"iter"
	"log"
	"time"
)

// DailySeriesSource produces raw daily weather for a coordinate and an
// inclusive date range. The returned sequence is single-use.
type DailySeriesSource interface {
	Name() string
	Daily(ctx context.Context, lat, lon float64, start, end time.Time) (iter.Seq[RawDay], error)
}

// FallbackSource tries Primary and substitutes Fallback for the whole range
// when Primary fails. Fallback is expected never to fail.
type FallbackSource struct {
	Primary  DailySeriesSource
	Fallback DailySeriesSource
}

// Series is a daily sequence tagged with the source that produced it.
type Series struct {
	Source string
	Days   iter.Seq[RawDay]
}

// Daily returns the primary series, or the fallback series when the primary
// reports an error. The primary error is logged, not returned.
func (f FallbackSource) Daily(ctx context.Context, lat, lon float64, start, end time.Time) (Series, error) {
	if f.Primary != nil {
		days, err := f.Primary.Daily(ctx, lat, lon, start, end)
		if err == nil {
			return Series{Source: f.Primary.Name(), Days: days}, nil
		}
		log.Printf("source: %s failed for %.4f,%.4f %s..%s, using %s: %v",
			f.Primary.Name(), lat, lon, start.Format(DateLayout), end.Format(DateLayout), f.Fallback.Name(), err)
	}

	days, err := f.Fallback.Daily(ctx, lat, lon, start, end)
	if err != nil {
		return Series{}, err
	}
	return Series{Source: f.Fallback.Name(), Days: days}, nil
}
