package store

import (
	"time"

	"github.com/i474232898/weather-history/internal/weather"
)

type cityRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"column:name;size:100;not null;uniqueIndex:uc_name_country"`
	Country   string    `gorm:"column:country;size:100;not null;uniqueIndex:uc_name_country"`
	Latitude  float64   `gorm:"column:latitude;type:decimal(9,6);not null"`
	Longitude float64   `gorm:"column:longitude;type:decimal(9,6);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (cityRow) TableName() string { return "cities" }

type weatherDataRow struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement;column:id"`
	CityID             int64     `gorm:"column:city_id;not null;uniqueIndex:uc_city_date"`
	City               cityRow   `gorm:"foreignKey:CityID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Date               time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uc_city_date"`
	Temperature        float64   `gorm:"column:temperature;type:decimal(5,2)"`
	FeelsLike          *float64  `gorm:"column:feels_like;type:decimal(5,2)"`
	TemperatureMin     float64   `gorm:"column:temperature_min;type:decimal(5,2)"`
	TemperatureMax     float64   `gorm:"column:temperature_max;type:decimal(5,2)"`
	Pressure           *int      `gorm:"column:pressure"`
	Humidity           *int      `gorm:"column:humidity"`
	WindSpeed          float64   `gorm:"column:wind_speed;type:decimal(5,2)"`
	WindDirection      int       `gorm:"column:wind_direction"`
	WeatherCondition   string    `gorm:"column:weather_condition;size:100"`
	WeatherDescription string    `gorm:"column:weather_description;size:255"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (weatherDataRow) TableName() string { return "weather_data" }

type weatherStatRow struct {
	ID                int64     `gorm:"primaryKey;autoIncrement;column:id"`
	CityID            int64     `gorm:"column:city_id;not null;uniqueIndex:uc_city_date_period"`
	City              cityRow   `gorm:"foreignKey:CityID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	StatDate          time.Time `gorm:"column:stat_date;type:date;not null;uniqueIndex:uc_city_date_period"`
	PeriodDays        int       `gorm:"column:period_days;not null;uniqueIndex:uc_city_date_period"`
	AvgTemperature    float64   `gorm:"column:avg_temperature;type:decimal(5,2)"`
	MinTemperature    float64   `gorm:"column:min_temperature;type:decimal(5,2)"`
	MaxTemperature    float64   `gorm:"column:max_temperature;type:decimal(5,2)"`
	AvgHumidity       *int      `gorm:"column:avg_humidity"`
	MinHumidity       *int      `gorm:"column:min_humidity"`
	MaxHumidity       *int      `gorm:"column:max_humidity"`
	AvgWindSpeed      float64   `gorm:"column:avg_wind_speed;type:decimal(5,2)"`
	MinWindSpeed      float64   `gorm:"column:min_wind_speed;type:decimal(5,2)"`
	MaxWindSpeed      float64   `gorm:"column:max_wind_speed;type:decimal(5,2)"`
	AvgPressure       *int      `gorm:"column:avg_pressure"`
	MinPressure       *int      `gorm:"column:min_pressure"`
	MaxPressure       *int      `gorm:"column:max_pressure"`
	DominantCondition string    `gorm:"column:dominant_condition;size:100"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (weatherStatRow) TableName() string { return "weather_stats" }

func (r cityRow) toLocation() weather.Location {
	return weather.Location{
		ID:        r.ID,
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

func newDayRow(locationID int64, rec weather.DayRecord) weatherDataRow {
	return weatherDataRow{
		CityID:             locationID,
		Date:               weather.Day(rec.Date),
		Temperature:        rec.Temperature,
		FeelsLike:          rec.FeelsLike,
		TemperatureMin:     rec.TemperatureMin,
		TemperatureMax:     rec.TemperatureMax,
		Pressure:           rec.Pressure,
		Humidity:           rec.Humidity,
		WindSpeed:          rec.WindSpeed,
		WindDirection:      rec.WindDirection,
		WeatherCondition:   string(rec.Condition),
		WeatherDescription: rec.Description,
	}
}

func (r weatherDataRow) toDayRecord() weather.DayRecord {
	return weather.DayRecord{
		Date:           weather.Day(r.Date),
		Temperature:    r.Temperature,
		TemperatureMin: r.TemperatureMin,
		TemperatureMax: r.TemperatureMax,
		FeelsLike:      r.FeelsLike,
		Pressure:       r.Pressure,
		Humidity:       r.Humidity,
		WindSpeed:      r.WindSpeed,
		WindDirection:  r.WindDirection,
		Condition:      weather.Condition(r.WeatherCondition),
		Description:    r.WeatherDescription,
	}
}

func newStatRow(s weather.PeriodStat) weatherStatRow {
	return weatherStatRow{
		CityID:            s.LocationID,
		StatDate:          weather.Day(s.StatDate),
		PeriodDays:        s.PeriodDays,
		AvgTemperature:    s.AvgTemperature,
		MinTemperature:    s.MinTemperature,
		MaxTemperature:    s.MaxTemperature,
		AvgHumidity:       s.AvgHumidity,
		MinHumidity:       s.MinHumidity,
		MaxHumidity:       s.MaxHumidity,
		AvgWindSpeed:      s.AvgWindSpeed,
		MinWindSpeed:      s.MinWindSpeed,
		MaxWindSpeed:      s.MaxWindSpeed,
		AvgPressure:       s.AvgPressure,
		MinPressure:       s.MinPressure,
		MaxPressure:       s.MaxPressure,
		DominantCondition: string(s.DominantCondition),
	}
}

func (r weatherStatRow) toPeriodStat() weather.PeriodStat {
	return weather.PeriodStat{
		LocationID:        r.CityID,
		StatDate:          weather.Day(r.StatDate),
		PeriodDays:        r.PeriodDays,
		AvgTemperature:    r.AvgTemperature,
		MinTemperature:    r.MinTemperature,
		MaxTemperature:    r.MaxTemperature,
		AvgHumidity:       r.AvgHumidity,
		MinHumidity:       r.MinHumidity,
		MaxHumidity:       r.MaxHumidity,
		AvgWindSpeed:      r.AvgWindSpeed,
		MinWindSpeed:      r.MinWindSpeed,
		MaxWindSpeed:      r.MaxWindSpeed,
		AvgPressure:       r.AvgPressure,
		MinPressure:       r.MinPressure,
		MaxPressure:       r.MaxPressure,
		DominantCondition: weather.Condition(r.DominantCondition),
	}
}
