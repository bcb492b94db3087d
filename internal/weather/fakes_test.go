package weather

import (
	"context"
	"fmt"
	"time"
)

// fakeStore keeps day records in insertion order and can inject failures.
type fakeStore struct {
	locations []Location
	days      []DayRecord
	stats     map[string]PeriodStat

	creates   int
	statErr   map[int]error
	windowErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{stats: make(map[string]PeriodStat)}
}

func (s *fakeStore) FindLocation(_ context.Context, name, country string) (Location, error) {
	for _, l := range s.locations {
		if l.Name == name && l.Country == country {
			return l, nil
		}
	}
	return Location{}, ErrNotFound
}

func (s *fakeStore) CreateLocation(_ context.Context, loc Location) (Location, error) {
	s.creates++
	loc.ID = int64(len(s.locations) + 1)
	s.locations = append(s.locations, loc)
	return loc, nil
}

func (s *fakeStore) UpsertDay(_ context.Context, _ int64, rec DayRecord) (UpsertOutcome, error) {
	for i, d := range s.days {
		if d.Date.Equal(rec.Date) {
			s.days[i] = rec
			return Updated, nil
		}
	}
	s.days = append(s.days, rec)
	return Inserted, nil
}

func (s *fakeStore) window(from, to time.Time) []DayRecord {
	var out []DayRecord
	for _, d := range s.days {
		if !d.Date.Before(from) && !d.Date.After(to) {
			out = append(out, d)
		}
	}
	return out
}

func (s *fakeStore) WindowSummary(_ context.Context, _ int64, from, to time.Time) (WindowSummary, error) {
	if s.windowErr != nil {
		return WindowSummary{}, s.windowErr
	}
	sum, ok := SummarizeDays(s.window(from, to))
	if !ok {
		return WindowSummary{}, ErrAggregationGap
	}
	return sum, nil
}

func (s *fakeStore) DominantCondition(_ context.Context, _ int64, from, to time.Time) (Condition, error) {
	return DominantOf(s.window(from, to)), nil
}

func (s *fakeStore) UpsertPeriodStat(_ context.Context, stat PeriodStat) (UpsertOutcome, error) {
	if err := s.statErr[stat.PeriodDays]; err != nil {
		return 0, err
	}
	key := fmt.Sprintf("%d/%s/%d", stat.LocationID, stat.StatDate.Format(DateLayout), stat.PeriodDays)
	_, exists := s.stats[key]
	s.stats[key] = stat
	if exists {
		return Updated, nil
	}
	return Inserted, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) stat(locationID int64, date time.Time, period int) (PeriodStat, bool) {
	st, ok := s.stats[fmt.Sprintf("%d/%s/%d", locationID, date.Format(DateLayout), period)]
	return st, ok
}

// fakeGeocoder answers from a fixed table keyed by query.
type fakeGeocoder struct {
	matches map[string]GeoMatch
	err     error
}

func (g fakeGeocoder) Name() string { return "fake" }

func (g fakeGeocoder) Geocode(_ context.Context, query string) (GeoMatch, error) {
	if g.err != nil {
		return GeoMatch{}, g.err
	}
	m, ok := g.matches[query]
	if !ok {
		return GeoMatch{}, ErrNoMatch
	}
	return m, nil
}
