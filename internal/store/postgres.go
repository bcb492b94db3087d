package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/i474232898/weather-history/internal/weather"
)

// Config holds connection settings for PostgresStore.
type Config struct {
	DSN           string
	LogLevel      string // silent, error, warn or info
	MaxOpenConns  int
	SlowThreshold time.Duration
}

// PostgresStore implements weather.Store and weather.Reader on top of gorm.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects and pings the database.
func OpenPostgres(ctx context.Context, cfg Config) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("store: empty DSN")
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = 200 * time.Millisecond
	}

	lg := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  parseLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         lg,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", classify(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: ping: %w", classify(err))
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the cities, weather_data and weather_stats tables with
// their unique keys and foreign keys. It is safe to run repeatedly.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&cityRow{}, &weatherDataRow{}, &weatherStatRow{})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) FindLocation(ctx context.Context, name, country string) (weather.Location, error) {
	var row cityRow
	err := s.db.WithContext(ctx).
		Where("name = ? AND country = ?", name, country).
		Take(&row).Error
	if err != nil {
		return weather.Location{}, classify(err)
	}
	return row.toLocation(), nil
}

// CreateLocation inserts loc. A concurrent insert of the same (name, country)
// is absorbed by returning the stored row.
func (s *PostgresStore) CreateLocation(ctx context.Context, loc weather.Location) (weather.Location, error) {
	row := cityRow{
		Name:      loc.Name,
		Country:   loc.Country,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.FindLocation(ctx, loc.Name, loc.Country)
	}
	if err != nil {
		return weather.Location{}, &weather.PersistenceError{Op: "create location", Err: classify(err)}
	}
	return row.toLocation(), nil
}

// UpsertDay looks the (city, date) row up and overwrites it, or inserts a new one.
func (s *PostgresStore) UpsertDay(ctx context.Context, locationID int64, rec weather.DayRecord) (weather.UpsertOutcome, error) {
	row := newDayRow(locationID, rec)
	var outcome weather.UpsertOutcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing weatherDataRow
		err := tx.Select("id").
			Where("city_id = ? AND date = ?", locationID, row.Date).
			Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			outcome = weather.Inserted
			return tx.Omit(clause.Associations).Create(&row).Error
		case err != nil:
			return err
		}

		outcome = weather.Updated
		row.UpdatedAt = time.Now().UTC()
		return tx.Model(&weatherDataRow{ID: existing.ID}).
			Select("*").
			Omit("id", "city_id", "date", "created_at", clause.Associations).
			Updates(&row).Error
	})
	if err != nil {
		return 0, &weather.PersistenceError{Op: "upsert day", LocationID: locationID, Date: row.Date, Err: classify(err)}
	}
	return outcome, nil
}

type windowRow struct {
	RowCount       int
	AvgTemperature *float64
	MinTemperature *float64
	MaxTemperature *float64
	AvgHumidity    *float64
	MinHumidity    *int
	MaxHumidity    *int
	AvgWindSpeed   *float64
	MinWindSpeed   *float64
	MaxWindSpeed   *float64
	AvgPressure    *float64
	MinPressure    *int
	MaxPressure    *int
}

// WindowSummary aggregates in SQL; AVG/MIN/MAX ignore NULL humidity and pressure.
func (s *PostgresStore) WindowSummary(ctx context.Context, locationID int64, from, to time.Time) (weather.WindowSummary, error) {
	var r windowRow
	err := s.db.WithContext(ctx).
		Model(&weatherDataRow{}).
		Select(`COUNT(*) AS row_count,
			AVG(temperature)::float8 AS avg_temperature,
			MIN(temperature_min)::float8 AS min_temperature,
			MAX(temperature_max)::float8 AS max_temperature,
			AVG(humidity)::float8 AS avg_humidity,
			MIN(humidity) AS min_humidity,
			MAX(humidity) AS max_humidity,
			AVG(wind_speed)::float8 AS avg_wind_speed,
			MIN(wind_speed)::float8 AS min_wind_speed,
			MAX(wind_speed)::float8 AS max_wind_speed,
			AVG(pressure)::float8 AS avg_pressure,
			MIN(pressure) AS min_pressure,
			MAX(pressure) AS max_pressure`).
		Where("city_id = ? AND date BETWEEN ? AND ?", locationID, weather.Day(from), weather.Day(to)).
		Scan(&r).Error
	if err != nil {
		return weather.WindowSummary{}, fmt.Errorf("window summary location=%d: %w", locationID, classify(err))
	}
	if r.RowCount == 0 || r.AvgTemperature == nil {
		return weather.WindowSummary{}, weather.ErrAggregationGap
	}

	return weather.WindowSummary{
		Rows:           r.RowCount,
		AvgTemperature: *r.AvgTemperature,
		MinTemperature: deref(r.MinTemperature),
		MaxTemperature: deref(r.MaxTemperature),
		AvgHumidity:    r.AvgHumidity,
		MinHumidity:    r.MinHumidity,
		MaxHumidity:    r.MaxHumidity,
		AvgWindSpeed:   deref(r.AvgWindSpeed),
		MinWindSpeed:   deref(r.MinWindSpeed),
		MaxWindSpeed:   deref(r.MaxWindSpeed),
		AvgPressure:    r.AvgPressure,
		MinPressure:    r.MinPressure,
		MaxPressure:    r.MaxPressure,
	}, nil
}

// DominantCondition returns the top group by count. Equal counts come back in
// whatever order postgres produces them.
func (s *PostgresStore) DominantCondition(ctx context.Context, locationID int64, from, to time.Time) (weather.Condition, error) {
	var top struct {
		WeatherCondition string
		Occurrences      int64
	}
	err := s.db.WithContext(ctx).
		Model(&weatherDataRow{}).
		Select("weather_condition, COUNT(*) AS occurrences").
		Where("city_id = ? AND date BETWEEN ? AND ?", locationID, weather.Day(from), weather.Day(to)).
		Group("weather_condition").
		Order("occurrences DESC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return "", fmt.Errorf("dominant condition location=%d: %w", locationID, classify(err))
	}
	if top.WeatherCondition == "" {
		return weather.ConditionUnknown, nil
	}
	return weather.Condition(top.WeatherCondition), nil
}

func (s *PostgresStore) UpsertPeriodStat(ctx context.Context, stat weather.PeriodStat) (weather.UpsertOutcome, error) {
	row := newStatRow(stat)
	var outcome weather.UpsertOutcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing weatherStatRow
		err := tx.Select("id").
			Where("city_id = ? AND stat_date = ? AND period_days = ?", row.CityID, row.StatDate, row.PeriodDays).
			Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			outcome = weather.Inserted
			return tx.Omit(clause.Associations).Create(&row).Error
		case err != nil:
			return err
		}

		outcome = weather.Updated
		row.UpdatedAt = time.Now().UTC()
		return tx.Model(&weatherStatRow{ID: existing.ID}).
			Select("*").
			Omit("id", "city_id", "stat_date", "period_days", "created_at", clause.Associations).
			Updates(&row).Error
	})
	if err != nil {
		return 0, &weather.PersistenceError{
			Op:         "upsert stat",
			LocationID: stat.LocationID,
			Date:       row.StatDate,
			PeriodDays: stat.PeriodDays,
			Err:        classify(err),
		}
	}
	return outcome, nil
}

func (s *PostgresStore) ListLocations(ctx context.Context) ([]weather.Location, error) {
	var rows []cityRow
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", classify(err))
	}
	out := make([]weather.Location, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toLocation())
	}
	return out, nil
}

func (s *PostgresStore) GetLocation(ctx context.Context, id int64) (weather.Location, error) {
	var row cityRow
	if err := s.db.WithContext(ctx).Take(&row, id).Error; err != nil {
		return weather.Location{}, classify(err)
	}
	return row.toLocation(), nil
}

func (s *PostgresStore) RecentDays(ctx context.Context, locationID int64, limit int) ([]weather.DayRecord, error) {
	var rows []weatherDataRow
	err := s.db.WithContext(ctx).
		Where("city_id = ?", locationID).
		Order("date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent days location=%d: %w", locationID, classify(err))
	}
	out := make([]weather.DayRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDayRecord())
	}
	return out, nil
}

func (s *PostgresStore) PeriodStats(ctx context.Context, locationID int64) ([]weather.PeriodStat, error) {
	var rows []weatherStatRow
	err := s.db.WithContext(ctx).
		Where("city_id = ?", locationID).
		Order("period_days, stat_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("period stats location=%d: %w", locationID, classify(err))
	}
	out := make([]weather.PeriodStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toPeriodStat())
	}
	return out, nil
}

// TopStat ranks every stored stat of the period, not only the latest stat_date.
func (s *PostgresStore) TopStat(ctx context.Context, rank weather.Ranking, periodDays int) (weather.RankedStat, error) {
	order := "avg_temperature DESC"
	switch rank {
	case weather.RankColdest:
		order = "avg_temperature ASC"
	case weather.RankWindiest:
		order = "avg_wind_speed DESC"
	}

	var row weatherStatRow
	err := s.db.WithContext(ctx).
		Preload("City").
		Where("period_days = ?", periodDays).
		Order(order).
		Take(&row).Error
	if err != nil {
		return weather.RankedStat{}, classify(err)
	}
	return weather.RankedStat{Location: row.City.toLocation(), Stat: row.toPeriodStat()}, nil
}

func (s *PostgresStore) Counts(ctx context.Context) (weather.Counts, error) {
	var c weather.Counts
	db := s.db.WithContext(ctx)
	if err := db.Model(&cityRow{}).Count(&c.Locations).Error; err != nil {
		return c, classify(err)
	}
	if err := db.Model(&weatherDataRow{}).Count(&c.Days).Error; err != nil {
		return c, classify(err)
	}
	if err := db.Model(&weatherStatRow{}).Count(&c.Stats).Error; err != nil {
		return c, classify(err)
	}
	return c, nil
}

func parseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
