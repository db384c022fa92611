package simulation

import (
	"math"
	"sort"
	"time"
)

// histogramBins is the fixed bucket count of the total-duration histogram.
const histogramBins = 20

// Percentile computes the p-th percentile (0..100) of a sorted sample using
// linear interpolation. A single-sample array returns that sample.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	if lower >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// summarizeDurations computes the duration statistics from the raw samples
// and their sorted copy.
func summarizeDurations(samples, sorted []float64) DurationStats {
	n := float64(len(samples))
	if n == 0 {
		return DurationStats{}
	}

	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	mean := sum / n

	variance := 0.0
	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	variance /= n // population variance

	return DurationStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		P50:    Percentile(sorted, 50),
		P80:    Percentile(sorted, 80),
		P90:    Percentile(sorted, 90),
	}
}

// completionDates maps the requested confidence levels to calendar dates from
// the schedule start.
func completionDates(start time.Time, sorted []float64, levels []int) []CompletionDate {
	out := make([]CompletionDate, 0, len(levels))
	for _, lvl := range levels {
		days := Percentile(sorted, float64(lvl))
		date := start.Add(time.Duration(days * 24 * float64(time.Hour)))
		out = append(out, CompletionDate{
			Level: lvl,
			Days:  days,
			Date:  date.Format("2006-01-02"),
		})
	}
	return out
}

// buildHistogram buckets the samples into a fixed number of bins spanning
// [min, max]. A zero-width range collapses into a single 100% bin.
func buildHistogram(sorted []float64) []HistogramBin {
	n := len(sorted)
	if n == 0 {
		return nil
	}

	minV := sorted[0]
	maxV := sorted[n-1]

	if minV == maxV {
		return []HistogramBin{{Min: minV, Max: maxV, Count: n, CumulativePercent: 100}}
	}

	width := (maxV - minV) / histogramBins
	bins := make([]HistogramBin, histogramBins)
	for b := range bins {
		bins[b].Min = minV + float64(b)*width
		bins[b].Max = minV + float64(b+1)*width
	}
	// The last bin absorbs the true max so no sample is lost to a
	// floating-point boundary.
	bins[histogramBins-1].Max = maxV

	for _, v := range sorted {
		idx := int((v - minV) / width)
		if idx >= histogramBins {
			idx = histogramBins - 1
		}
		bins[idx].Count++
	}

	running := 0
	for b := range bins {
		running += bins[b].Count
		bins[b].CumulativePercent = round2(float64(running) / float64(n) * 100)
	}
	bins[histogramBins-1].CumulativePercent = 100

	return bins
}

// rankAverage assigns 1-based ranks to the values, giving tied values the
// average of the positions they occupy.
func rankAverage(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// Positions i..j hold the same value; their rank is the average of
		// the 1-based positions.
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// spearman computes the Spearman rank correlation between two equal-length
// series: Pearson correlation on their average ranks.
func spearman(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	ra := rankAverage(a)
	rb := rankAverage(b)

	n := float64(len(a))
	sumA, sumB := 0.0, 0.0
	sumA2, sumB2 := 0.0, 0.0
	sumAB := 0.0

	for i := range ra {
		sumA += ra[i]
		sumB += rb[i]
		sumA2 += ra[i] * ra[i]
		sumB2 += rb[i] * rb[i]
		sumAB += ra[i] * rb[i]
	}

	num := n*sumAB - sumA*sumB
	den := math.Sqrt((n*sumA2 - sumA*sumA) * (n*sumB2 - sumB*sumB))
	if den == 0 {
		return 0
	}
	return num / den
}

// sensitivityRanking correlates each task's sampled-duration history against
// the total durations and ranks tasks by absolute correlation.
func sensitivityRanking(dists []TaskDistribution, histories [][]float64, totals []float64) []SensitivityEntry {
	entries := make([]SensitivityEntry, len(dists))
	for i, d := range dists {
		entries[i] = SensitivityEntry{
			TaskID:                 d.TaskID,
			TaskName:               d.TaskName,
			CorrelationCoefficient: spearman(histories[i], totals),
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return math.Abs(entries[a].CorrelationCoefficient) > math.Abs(entries[b].CorrelationCoefficient)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// criticalityIndex converts critical-path hit counts into sorted percentages.
func criticalityIndex(dists []TaskDistribution, hits []int, iterations int) []CriticalityEntry {
	entries := make([]CriticalityEntry, len(dists))
	for i, d := range dists {
		entries[i] = CriticalityEntry{
			TaskID:             d.TaskID,
			TaskName:           d.TaskName,
			CriticalityPercent: round2(float64(hits[i]) / float64(iterations) * 100),
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].CriticalityPercent > entries[b].CriticalityPercent
	})
	return entries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
