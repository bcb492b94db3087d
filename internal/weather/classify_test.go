package weather

import "testing"

func TestClassifyCondition(t *testing.T) {
	tests := []struct {
		precipitation, rain, snowfall float64
		want                          Condition
	}{
		{0, 0, 0, ConditionClear},
		{5, 0, 0, ConditionPrecipitation},
		{5, 3, 0, ConditionRain},
		{12, 12, 0, ConditionHeavyRain},
		{10, 10, 0, ConditionRain},
		{20, 15, 0.1, ConditionSnow},
	}

	for _, tt := range tests {
		got := ClassifyCondition(tt.precipitation, tt.rain, tt.snowfall)
		if got != tt.want {
			t.Errorf("ClassifyCondition(%v, %v, %v) = %q, want %q",
				tt.precipitation, tt.rain, tt.snowfall, got, tt.want)
		}
	}
}

func TestDescribeConditions(t *testing.T) {
	tests := []struct {
		precipitation, rain, snowfall float64
		want                          string
	}{
		{0, 0, 0, "Clear sky"},
		{1, 0, 0, "Precipitation"},
		{1, 1, 0, "Light rain"},
		{3, 3, 0, "Moderate rain"},
		{11, 11, 0, "Heavy rain"},
		{0, 0, 2, "Light snow"},
		{0, 20, 6, "Heavy snow"},
	}

	for _, tt := range tests {
		got := DescribeConditions(tt.precipitation, tt.rain, tt.snowfall)
		if got != tt.want {
			t.Errorf("DescribeConditions(%v, %v, %v) = %q, want %q",
				tt.precipitation, tt.rain, tt.snowfall, got, tt.want)
		}
	}
}
