package weather

// ClassifyCondition maps daily precipitation totals (mm, mm, cm) to a condition.
// Rules are evaluated in order; the first match wins.
func ClassifyCondition(precipitation, rain, snowfall float64) Condition {
	switch {
	case snowfall > 0:
		return ConditionSnow
	case rain > 10:
		return ConditionHeavyRain
	case rain > 0:
		return ConditionRain
	case precipitation > 0:
		return ConditionPrecipitation
	default:
		return ConditionClear
	}
}

// DescribeConditions is the finer-grained companion of ClassifyCondition.
func DescribeConditions(precipitation, rain, snowfall float64) string {
	switch {
	case snowfall > 5:
		return "Heavy snow"
	case snowfall > 0:
		return "Light snow"
	case rain > 10:
		return "Heavy rain"
	case rain > 2:
		return "Moderate rain"
	case rain > 0:
		return "Light rain"
	case precipitation > 0:
		return "Precipitation"
	default:
		return "Clear sky"
	}
}
