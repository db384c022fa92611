package simulation

import "math"

// forecastCost scales percentile durations into cost figures proportional to
// the baseline duration and the allocated budget. A zero budget or baseline
// yields an all-zero forecast, which is uninformative but not an error.
func forecastCost(stats DurationStats, baselineDays, budget float64) CostForecast {
	fc := CostForecast{BaselineDays: baselineDays, Budget: budget}
	if budget <= 0 || baselineDays <= 0 {
		return fc
	}

	fc.P50 = math.Round(stats.P50 / baselineDays * budget)
	fc.P80 = math.Round(stats.P80 / baselineDays * budget)
	fc.P90 = math.Round(stats.P90 / baselineDays * budget)
	return fc
}
