package weather

import (
	"time"
)

// DateLayout is the canonical ISO calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// Condition is the short weather category stored with every day record.
type Condition string

const (
	ConditionClear         Condition = "Clear"
	ConditionClouds        Condition = "Clouds"
	ConditionRain          Condition = "Rain"
	ConditionHeavyRain     Condition = "Heavy Rain"
	ConditionPrecipitation Condition = "Precipitation"
	ConditionSnow          Condition = "Snow"
	ConditionThunderstorm  Condition = "Thunderstorm"
	ConditionUnknown       Condition = "Unknown"
)

// PeriodDays lists the rolling windows computed for every location.
var PeriodDays = []int{7, 30}

// Location is a named place with resolved coordinates.
// Name/Country form the natural identity; ID is assigned by storage.
type Location struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RawDay is one day as produced by a DailySeriesSource, before normalization.
// Pointer fields are absent when nil.
type RawDay struct {
	Date           string
	Temperature    *float64
	TemperatureMin *float64
	TemperatureMax *float64
	FeelsLike      *float64
	Pressure       *int
	Humidity       *int
	WindSpeed      *float64
	WindDirection  *int
	Condition      Condition
	Description    string
}

// DayRecord is one calendar day's normalized observation for a location.
type DayRecord struct {
	Date           time.Time `json:"date"` // UTC midnight
	Temperature    float64   `json:"temperature"`
	TemperatureMin float64   `json:"temperatureMin"`
	TemperatureMax float64   `json:"temperatureMax"`
	FeelsLike      *float64  `json:"feelsLike"`
	Pressure       *int      `json:"pressure"`
	Humidity       *int      `json:"humidity"`
	WindSpeed      float64   `json:"windSpeed"`
	WindDirection  int       `json:"windDirection"`
	Condition      Condition `json:"weatherCondition"`
	Description    string    `json:"weatherDescription"`
}

// WindowSummary holds the numeric aggregates over a date window.
// Rows is the number of day records that qualified.
type WindowSummary struct {
	Rows           int
	AvgTemperature float64
	MinTemperature float64
	MaxTemperature float64
	AvgHumidity    *float64
	MinHumidity    *int
	MaxHumidity    *int
	AvgWindSpeed   float64
	MinWindSpeed   float64
	MaxWindSpeed   float64
	AvgPressure    *float64
	MinPressure    *int
	MaxPressure    *int
}

// PeriodStat is a rolling-window aggregate for a location as of StatDate.
type PeriodStat struct {
	LocationID        int64     `json:"locationId"`
	StatDate          time.Time `json:"statDate"`
	PeriodDays        int       `json:"periodDays"`
	AvgTemperature    float64   `json:"avgTemperature"`
	MinTemperature    float64   `json:"minTemperature"`
	MaxTemperature    float64   `json:"maxTemperature"`
	AvgHumidity       *int      `json:"avgHumidity"`
	MinHumidity       *int      `json:"minHumidity"`
	MaxHumidity       *int      `json:"maxHumidity"`
	AvgWindSpeed      float64   `json:"avgWindSpeed"`
	MinWindSpeed      float64   `json:"minWindSpeed"`
	MaxWindSpeed      float64   `json:"maxWindSpeed"`
	AvgPressure       *int      `json:"avgPressure"`
	MinPressure       *int      `json:"minPressure"`
	MaxPressure       *int      `json:"maxPressure"`
	DominantCondition Condition `json:"dominantCondition"`
}

// UpsertOutcome reports which branch of an upsert was taken.
type UpsertOutcome int

const (
	Inserted UpsertOutcome = iota + 1
	Updated
)

func (o UpsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "none"
	}
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
