package weather

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSyntheticSource_OneRecordPerDate(t *testing.T) {
	src := NewSyntheticSource(rand.New(rand.NewPCG(1, 2)), fixedClock(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)))
	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	days, err := src.Daily(context.Background(), 51.5, -0.12, start, end)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}

	want := start
	n := 0
	for d := range days {
		if d.Date != want.Format(DateLayout) {
			t.Fatalf("day %d: date %s, want %s", n, d.Date, want.Format(DateLayout))
		}
		want = want.AddDate(0, 0, 1)
		n++

		if _, err := Normalize(d); err != nil {
			t.Errorf("%s: synthetic day does not normalize: %v", d.Date, err)
		}
		if *d.TemperatureMin > *d.Temperature || *d.Temperature > *d.TemperatureMax {
			t.Errorf("%s: want min <= temp <= max, got %v <= %v <= %v",
				d.Date, *d.TemperatureMin, *d.Temperature, *d.TemperatureMax)
		}
		if *d.Temperature < syntheticMinTemp || *d.Temperature > syntheticMaxTemp {
			t.Errorf("%s: temperature %v outside [%v, %v]", d.Date, *d.Temperature, syntheticMinTemp, syntheticMaxTemp)
		}
		if h := *d.Humidity; h < 10 || h > 100 {
			t.Errorf("%s: humidity %d outside [10, 100]", d.Date, h)
		}
		if p := *d.Pressure; p < 998 || p > 1028 {
			t.Errorf("%s: pressure %d outside [998, 1028]", d.Date, p)
		}
		if w := *d.WindSpeed; w < 0 || w > 20 {
			t.Errorf("%s: wind speed %v outside [0, 20]", d.Date, w)
		}
		if dir := *d.WindDirection; dir < 0 || dir > 359 {
			t.Errorf("%s: wind direction %d outside [0, 359]", d.Date, dir)
		}
		if _, ok := syntheticDescriptions[d.Condition]; !ok {
			t.Errorf("%s: unexpected condition %q", d.Date, d.Condition)
		}
	}
	if n != 31 {
		t.Errorf("got %d days, want 31", n)
	}
}

func TestSyntheticSource_SingleDay(t *testing.T) {
	src := NewSyntheticSource(rand.New(rand.NewPCG(3, 4)), nil)
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	days, err := src.Daily(context.Background(), -33.9, 18.4, day, day)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	n := 0
	for range days {
		n++
	}
	if n != 1 {
		t.Errorf("got %d days, want 1", n)
	}
}

func TestSyntheticSource_EndBeforeStart(t *testing.T) {
	src := NewSyntheticSource(nil, nil)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if _, err := src.Daily(context.Background(), 0, 0, start, start.AddDate(0, 0, -1)); err == nil {
		t.Fatal("expected error when end is before start")
	}
}

func TestSyntheticSource_StopsOnCancel(t *testing.T) {
	src := NewSyntheticSource(rand.New(rand.NewPCG(5, 6)), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	days, err := src.Daily(ctx, 10, 10, start, start.AddDate(0, 0, 99))
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	n := 0
	for range days {
		n++
		if n == 3 {
			cancel()
		}
	}
	if n != 3 {
		t.Errorf("got %d days after cancel, want 3", n)
	}
}

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month    time.Month
		northern bool
		want     season
	}{
		{time.January, true, winter},
		{time.January, false, summer},
		{time.April, true, spring},
		{time.April, false, fall},
		{time.July, true, summer},
		{time.July, false, winter},
		{time.October, true, fall},
		{time.October, false, spring},
	}
	for _, tt := range tests {
		if got := seasonOf(tt.month, tt.northern); got != tt.want {
			t.Errorf("seasonOf(%v, northern=%v) = %v, want %v", tt.month, tt.northern, got, tt.want)
		}
	}
}

func TestSyntheticSource_PickRespectsZeroWeights(t *testing.T) {
	src := NewSyntheticSource(rand.New(rand.NewPCG(7, 8)), nil)
	for range 1000 {
		if c := src.pick(hotWeights); c == ConditionSnow {
			t.Fatal("hot weights must never produce snow")
		}
	}
}
