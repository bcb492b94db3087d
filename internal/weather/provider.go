package weather

import (
	"context"
	"time"
)

// GeoMatch is the best geocoding candidate for a free-text place name.
type GeoMatch struct {
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
}

// Geocoder abstracts a place-name lookup (e.g. Open-Meteo, Google Maps).
// Implementations return ErrNoMatch when nothing matches.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) (GeoMatch, error)
}

// Store is the write-side contract the pipeline needs from storage.
// Write failures are reported as *PersistenceError.
type Store interface {
	// FindLocation looks a location up by its natural key; ErrNotFound if absent.
	FindLocation(ctx context.Context, name, country string) (Location, error)
	CreateLocation(ctx context.Context, loc Location) (Location, error)

	// UpsertDay keeps exactly one record per (locationID, rec.Date).
	UpsertDay(ctx context.Context, locationID int64, rec DayRecord) (UpsertOutcome, error)

	// WindowSummary aggregates day records with from <= date <= to.
	// It returns ErrAggregationGap when no rows qualify.
	WindowSummary(ctx context.Context, locationID int64, from, to time.Time) (WindowSummary, error)
	// DominantCondition returns the most frequent condition in the window.
	// Ties are resolved by whichever row the store yields first.
	DominantCondition(ctx context.Context, locationID int64, from, to time.Time) (Condition, error)
	UpsertPeriodStat(ctx context.Context, stat PeriodStat) (UpsertOutcome, error)

	Ping(ctx context.Context) error
}

// Ranking selects the ordering for cross-location stat queries.
type Ranking string

const (
	RankHottest  Ranking = "hottest"
	RankColdest  Ranking = "coldest"
	RankWindiest Ranking = "windiest"
)

// RankedStat pairs a period stat with its location.
type RankedStat struct {
	Location Location   `json:"location"`
	Stat     PeriodStat `json:"stat"`
}

// Counts is a row count per table.
type Counts struct {
	Locations int64 `json:"locations"`
	Days      int64 `json:"days"`
	Stats     int64 `json:"stats"`
}

// Reader is the read-only query surface used by the HTTP API and reports.
type Reader interface {
	ListLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, id int64) (Location, error)
	RecentDays(ctx context.Context, locationID int64, limit int) ([]DayRecord, error)
	PeriodStats(ctx context.Context, locationID int64) ([]PeriodStat, error)
	TopStat(ctx context.Context, rank Ranking, periodDays int) (RankedStat, error)
	Counts(ctx context.Context) (Counts, error)
}
