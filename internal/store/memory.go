package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-history/internal/weather"
)

type locationKey struct {
	name, country string
}

type statKey struct {
	locationID int64
	statDate   time.Time
	periodDays int
}

// dayHistory holds a location's day records ordered by date.
type dayHistory struct {
	Days []weather.DayRecord
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store
// and weather.Reader with the same natural-key uniqueness as the SQL schema.
type MemoryStore struct {
	mu sync.RWMutex

	nextID    int64
	locations []weather.Location
	byKey     map[locationKey]int64

	// key: location id, value: history
	days  map[int64]*dayHistory
	stats map[statKey]weather.PeriodStat
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byKey: make(map[locationKey]int64),
		days:  make(map[int64]*dayHistory),
		stats: make(map[statKey]weather.PeriodStat),
	}
}

func (s *MemoryStore) FindLocation(_ context.Context, name, country string) (weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[locationKey{name, country}]
	if !ok {
		return weather.Location{}, weather.ErrNotFound
	}
	return s.locations[id-1], nil
}

func (s *MemoryStore) CreateLocation(_ context.Context, loc weather.Location) (weather.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey[locationKey{loc.Name, loc.Country}]; ok {
		return s.locations[id-1], nil
	}
	s.nextID++
	loc.ID = s.nextID
	s.locations = append(s.locations, loc)
	s.byKey[locationKey{loc.Name, loc.Country}] = loc.ID
	return loc, nil
}

// UpsertDay replaces the record for rec.Date or inserts it in date order.
func (s *MemoryStore) UpsertDay(_ context.Context, locationID int64, rec weather.DayRecord) (weather.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasLocation(locationID) {
		return 0, &weather.PersistenceError{Op: "upsert day", LocationID: locationID, Date: rec.Date, Err: weather.ErrForeignKey}
	}
	rec.Date = weather.Day(rec.Date)

	history, ok := s.days[locationID]
	if !ok {
		history = &dayHistory{}
		s.days[locationID] = history
	}

	i := sort.Search(len(history.Days), func(i int) bool {
		return !history.Days[i].Date.Before(rec.Date)
	})
	if i < len(history.Days) && history.Days[i].Date.Equal(rec.Date) {
		history.Days[i] = rec
		return weather.Updated, nil
	}
	history.Days = append(history.Days, weather.DayRecord{})
	copy(history.Days[i+1:], history.Days[i:])
	history.Days[i] = rec
	return weather.Inserted, nil
}

func (s *MemoryStore) WindowSummary(_ context.Context, locationID int64, from, to time.Time) (weather.WindowSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := weather.SummarizeDays(s.window(locationID, from, to))
	if !ok {
		return weather.WindowSummary{}, weather.ErrAggregationGap
	}
	return sum, nil
}

// DominantCondition breaks ties by date order, the order rows are kept in.
func (s *MemoryStore) DominantCondition(_ context.Context, locationID int64, from, to time.Time) (weather.Condition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return weather.DominantOf(s.window(locationID, from, to)), nil
}

func (s *MemoryStore) UpsertPeriodStat(_ context.Context, stat weather.PeriodStat) (weather.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasLocation(stat.LocationID) {
		return 0, &weather.PersistenceError{Op: "upsert stat", LocationID: stat.LocationID, PeriodDays: stat.PeriodDays, Err: weather.ErrForeignKey}
	}
	stat.StatDate = weather.Day(stat.StatDate)
	key := statKey{stat.LocationID, stat.StatDate, stat.PeriodDays}
	_, exists := s.stats[key]
	s.stats[key] = stat
	if exists {
		return weather.Updated, nil
	}
	return weather.Inserted, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) ListLocations(context.Context) ([]weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]weather.Location(nil), s.locations...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetLocation(_ context.Context, id int64) (weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasLocation(id) {
		return weather.Location{}, weather.ErrNotFound
	}
	return s.locations[id-1], nil
}

// RecentDays returns up to limit records, newest first.
func (s *MemoryStore) RecentDays(_ context.Context, locationID int64, limit int) ([]weather.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.days[locationID]
	if !ok {
		return nil, nil
	}
	var out []weather.DayRecord
	for i := len(history.Days) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history.Days[i])
	}
	return out, nil
}

func (s *MemoryStore) PeriodStats(_ context.Context, locationID int64) ([]weather.PeriodStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.PeriodStat
	for k, st := range s.stats {
		if k.locationID == locationID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PeriodDays != out[j].PeriodDays {
			return out[i].PeriodDays < out[j].PeriodDays
		}
		return out[i].StatDate.After(out[j].StatDate)
	})
	return out, nil
}

func (s *MemoryStore) TopStat(_ context.Context, rank weather.Ranking, periodDays int) (weather.RankedStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best  weather.PeriodStat
		found bool
	)
	for k, st := range s.stats {
		if k.periodDays != periodDays {
			continue
		}
		if !found || ranksAbove(rank, st, best) {
			best, found = st, true
		}
	}
	if !found {
		return weather.RankedStat{}, weather.ErrNotFound
	}
	return weather.RankedStat{Location: s.locations[best.LocationID-1], Stat: best}, nil
}

func (s *MemoryStore) Counts(context.Context) (weather.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := weather.Counts{
		Locations: int64(len(s.locations)),
		Stats:     int64(len(s.stats)),
	}
	for _, h := range s.days {
		c.Days += int64(len(h.Days))
	}
	return c, nil
}

func (s *MemoryStore) hasLocation(id int64) bool {
	return id > 0 && id <= int64(len(s.locations))
}

// window returns the records with from <= date <= to. Caller holds the lock.
func (s *MemoryStore) window(locationID int64, from, to time.Time) []weather.DayRecord {
	history, ok := s.days[locationID]
	if !ok {
		return nil
	}
	from, to = weather.Day(from), weather.Day(to)

	var out []weather.DayRecord
	for _, d := range history.Days {
		if (d.Date.Equal(from) || d.Date.After(from)) &&
			(d.Date.Equal(to) || d.Date.Before(to)) {
			out = append(out, d)
		}
	}
	return out
}

func ranksAbove(rank weather.Ranking, a, b weather.PeriodStat) bool {
	switch rank {
	case weather.RankColdest:
		return a.AvgTemperature < b.AvgTemperature
	case weather.RankWindiest:
		return a.AvgWindSpeed > b.AvgWindSpeed
	default:
		return a.AvgTemperature > b.AvgTemperature
	}
}
